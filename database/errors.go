package database

import "errors"

var (
	ErrAlreadySettled   = errors.New("booking payment already processed")
	ErrWalletNotFound   = errors.New("host wallet not found")
	ErrStateChanged     = errors.New("booking state changed concurrently")
	ErrDatesUnavailable = errors.New("listing is not available for the selected dates")
	ErrInsufficientFund = errors.New("insufficient wallet balance")
)
