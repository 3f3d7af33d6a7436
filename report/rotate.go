/*
 * rotate.go, part of zopt.
 *
 * Copyright 2026 The zopt Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/zopt"
)

// DefaultBackups is the default largest numeric suffix tried by RenameExisting.
const DefaultBackups = 1000

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func backupName(path string, i int) string {
	return fmt.Sprintf("%s_%d", path, i)
}

// RenameExisting makes room for a new file (or directory) at path. If path exists,
// it is renamed to path_1, after the existing backups have been shifted: path_1
// becomes path_2 and so on, up to the first free suffix. The most recent backup is
// thus always path_1. At most limit (DefaultBackups by default) suffixes are
// tried; if none is free, an error of kind zopt.ErrOutputPathExhausted is returned
// and nothing is renamed.
func RenameExisting(path string, limit ...int) error {
	max := DefaultBackups
	if len(limit) > 0 && limit[0] > 0 {
		max = limit[0]
	}
	path = strings.TrimRight(filepath.Clean(path), string(filepath.Separator))
	ok, err := exists(path)
	if err != nil {
		return zopt.NewError(nil, "checking "+path, err)
	}
	if !ok {
		return nil
	}
	end := 0
	for i := 1; i <= max; i++ {
		taken, err := exists(backupName(path, i))
		if err != nil {
			return zopt.NewError(nil, "checking backups of "+path, err)
		}
		if !taken {
			end = i
			break
		}
	}
	if end == 0 {
		return zopt.NewError(zopt.ErrOutputPathExhausted, fmt.Sprintf("%s, %d backups", path, max), nil)
	}
	for i := end; i > 1; i-- {
		if err := os.Rename(backupName(path, i-1), backupName(path, i)); err != nil {
			return zopt.NewError(nil, "rotating backups", err)
		}
	}
	if err := os.Rename(path, backupName(path, 1)); err != nil {
		return zopt.NewError(nil, "rotating backups", err)
	}
	return nil
}
