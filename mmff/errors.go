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

package mmff

import (
	"errors"
	"strings"
)

var (
	ErrParse               = errors.New("malformed parameter file")
	ErrUnknownParameterSet = errors.New("unknown parameter set")
	ErrMissingParameter    = errors.New("missing force field parameter")
	ErrUntyped             = errors.New("atom without force field type")
	ErrMinimization        = errors.New("minimization failed")
)

//Error is the error type for the mmff package. It implements chem.Error.
type Error struct {
	msg  string
	kind error
	deco []string
}

func newError(kind error, msg, caller string) *Error {
	return &Error{msg: msg, kind: kind, deco: []string{caller}}
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	return "mmff: " + err.kind.Error() + ": " + err.msg + " (" + strings.Join(err.deco, " <- ") + ")"
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

//Unwrap returns the kind of the error.
func (err *Error) Unwrap() error {
	return err.kind
}

func errDecorate(err error, caller string) error {
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
	}
	return err
}
