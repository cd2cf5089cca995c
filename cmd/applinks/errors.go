package main

import "errors"

var errUnhandled = errors.New("one or more links were not handled")
