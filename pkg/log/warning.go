package log

import (
	"fmt"
	"strings"

	scierrors "github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// Warning records a pkg/errors warning on logger, tagged with its type under
// ErrorTypeKey. A handler installed with errors.SetWarningHandler also
// receives it.
//
//	log.Warning(cfg.logger, scierrors.NewDegenerateVarianceWarning(op, name, 0),
//	    log.FeatureKey, name,
//	)
func Warning(logger Logger, w error, fields ...any) {
	scierrors.HandleWarning(w)
	attrs := append([]any{ErrorTypeKey, warningType(w)}, fields...)
	logger.Warn(w.Error(), attrs...)
}

// warningType returns the bare type name, e.g. "SingleFoldWarning".
func warningType(w error) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", w), "*")
	return name[strings.LastIndex(name, ".")+1:]
}
