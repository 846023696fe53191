package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/liftsheet/internal/adapters/csvio"
	"github.com/okian/liftsheet/internal/domain/lifts"
	"github.com/okian/liftsheet/pkg/logger"
)

const defaultMaxBodyBytes int64 = 32 << 20

// TransformHandler turns an uploaded CSV into its transformed form.
type TransformHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewTransformHandler creates a new transform handler.
func NewTransformHandler(deps Dependencies) *TransformHandler {
	return &TransformHandler{deps: deps, maxBodyBytes: defaultMaxBodyBytes}
}

// HandleTransform handles POST /transform?stages=best,round.
func (h *TransformHandler) HandleTransform(w http.ResponseWriter, r *http.Request) {
	const op = "api.transform"
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var stages []lifts.Stage
	if list := r.URL.Query().Get("stages"); strings.TrimSpace(list) != "" {
		parsed, err := lifts.ParseStages(list)
		if err != nil {
			writeError(w, http.StatusBadRequest, lifts.KindUnknownStage, WrapKind(op, ErrBadRequest, err))
			return
		}
		stages = parsed
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	src, err := csvio.Read(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_csv", WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.Transform(ctx, src, stages)
	if err != nil {
		logger.Get().Debug(ctx, "transform rejected",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Int("rows", src.Len()),
			logger.Error(err),
		)
		writeError(w, http.StatusUnprocessableEntity, lifts.ErrorKind(err), WrapKind(op, ErrTransform, err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := csvio.Write(w, out); err != nil {
		logger.Get().Warn(ctx, "write transform response",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
	}
}
