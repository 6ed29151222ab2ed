package shared

import (
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/pkg/errs"
)

// TranslateRepoErr maps repository failures onto the caller-facing taxonomy. Errors that already
// belong to the taxonomy pass through untouched.
func TranslateRepoErr(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case infra.IsKind(err, infra.KindNotFound):
		return errs.NotFound(resource, id)
	case infra.IsKind(err, infra.KindForeignKeyViolated):
		return errs.NotFound(resource, id)
	case infra.IsKind(err, infra.KindDBFailure), infra.IsKind(err, infra.KindCanceled):
		return errs.Mark(err, errs.ErrUnavailable)
	default:
		return err
	}
}
