package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/surveytarget/internal/adapters/export"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/pkg/metrics"
)

// ExportHandler serves result sets as file downloads.
type ExportHandler struct {
	deps     Dependencies
	resolver *paramResolver
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, defaults query.Params) *ExportHandler {
	return &ExportHandler{deps: deps, resolver: &paramResolver{defaults: defaults}}
}

// HandleExport handles GET /api/targets/export?...&format=csv|xlsx requests.
// An empty result answers 204 with no body.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	p, err := h.resolver.resolve(r)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	out, err := h.deps.Targets(r.Context(), p)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	rememberParams(w, p)
	if out.Result.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
	w.Header().Set("X-Run-Id", out.RunID)
	w.Header().Set("X-Result-Count", strconv.Itoa(out.Result.Len()))
	n, _ := export.Write(w, format, out.Result.Matches)
	metrics.RecordExportBytes(string(format), int(n))
}
