/*
 * errors.go, part of goConf.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
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

package fragdb

import (
	"errors"
	"strings"
)

var (
	ErrDatabase = errors.New("database failure")
	ErrEncoding = errors.New("fragment encoding failure")
)

//Error is the error type for the fragdb package. It implements chem.Error. Both the kind
//and the underlying cause can be matched with errors.Is.
type Error struct {
	kind  error
	cause error
	deco  []string
}

func newError(kind, cause error, caller string) *Error {
	return &Error{kind: kind, cause: cause, deco: []string{caller}}
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	return "fragdb: " + err.kind.Error() + ": " + err.cause.Error() + " (" + strings.Join(err.deco, " <- ") + ")"
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

func (err *Error) Unwrap() []error {
	return []error{err.kind, err.cause}
}
