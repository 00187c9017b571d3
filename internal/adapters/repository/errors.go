package repository

import "errors"

// Sentinel kinds for roster store errors.
var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrLoadDataset  = errors.New("load dataset failed")
	ErrEmptyDataset = errors.New("dataset has no people")
)
