package common

import "errors"

var (
	ErrDeviceTooSmall = errors.New("device too small")
	ErrAlreadyMounted = errors.New("file system already mounted")
	ErrNotMounted     = errors.New("file system not mounted")
	ErrInvalidImage   = errors.New("invalid file system image")
	ErrInvalidInumber = errors.New("invalid inumber")
	ErrInodeTableFull = errors.New("inode table full")
	ErrDiskFull       = errors.New("no space left on device")
	ErrFileTooLarge   = errors.New("file too large")
)
