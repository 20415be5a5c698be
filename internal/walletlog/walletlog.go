// Package walletlog sets up the zerolog logger threaded through the
// facade and networking layers.
//
// Call sites in this wallet pass only addresses, indices, tags, and byte
// counts — never mnemonics, passphrases, private keys, or seeds.
package walletlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a leveled console logger. verbose lowers the minimum level
// to debug; otherwise only info-and-above is emitted.
func New(verbose bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
