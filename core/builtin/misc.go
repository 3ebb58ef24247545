package builtin

import (
	"context"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial(":", colon)
	interp.Register("true", boolCmd(0))
	interp.Register("false", boolCmd(1))
}

// colon does nothing, successfully. Its expansions and redirections still
// happen, which is what scripts use it for.
func colon(ctx context.Context, p *interp.Proc) (int, error) {
	return 0, nil
}

func boolCmd(status int) interp.BuiltinFunc {
	return func(ctx context.Context, p *interp.Proc) (int, error) {
		return status, nil
	}
}
