//go:build tools

package tools

// Mocks under pkg/*/mocks follow mockery's expecter layout. Pinning the
// generator here keeps its version in go.mod.
import (
	_ "github.com/vektra/mockery/v2"
)
