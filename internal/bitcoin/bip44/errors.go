package bip44

import "errors"

var (
	errUnknownCoinType = errors.New("bip44: unknown coin type index")
	errUnknownAccount  = errors.New("bip44: unknown account index")
)
