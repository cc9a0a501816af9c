package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/common"
)

// describeError renders a command failure for the user. Field errors are
// listed one field per line.
func describeError(cmd string, err error) string {
	var (
		usage usageError
		fe    *client.FieldErrors
	)
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.As(err, &fe):
		var b strings.Builder
		fmt.Fprintf(&b, "%s: please correct the following", cmd)
		for _, field := range slices.Sorted(maps.Keys(fe.Fields)) {
			name := field
			if field == client.NonFieldKey || field == "" {
				name = "general"
			}
			fmt.Fprintf(&b, "\n  %s: %s", name, strings.Join(fe.Fields[field], "; "))
		}
		return b.String()
	case errors.Is(err, common.ErrSessionCancelled):
		return cmd + ": cancelled in the Yivi app"
	case errors.Is(err, common.ErrSessionTimeout):
		return cmd + ": the Yivi session timed out, try again"
	case errors.Is(err, common.ErrRefreshFailed):
		return cmd + ": your session has expired, please log in again"
	case errors.Is(err, common.ErrUnauthorized):
		return cmd + ": you need to log in first (type 'login')"
	case errors.Is(err, common.ErrForbidden):
		return cmd + ": you do not maintain this organization"
	case errors.Is(err, common.ErrNotFound):
		return cmd + ": not found"
	case errors.Is(err, client.ErrUnavailable):
		return cmd + ": the portal is unreachable, try again later"
	case errors.Is(err, context.Canceled):
		return cmd + ": interrupted"
	default:
		return fmt.Sprintf("%s: %v", cmd, err)
	}
}
