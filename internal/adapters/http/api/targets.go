package api

import (
	"fmt"
	"net/http"

	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/domain/targeting"
	"github.com/okian/surveytarget/internal/domain/types"
)

// NoMatchMessage is shown when no record reaches the threshold.
const NoMatchMessage = "No doctors found for the selected time and day. Try a different combination or adjust the threshold."

// TargetsHandler handles targeting queries.
type TargetsHandler struct {
	deps     Dependencies
	resolver *paramResolver
}

// NewTargetsHandler creates a new targets handler.
func NewTargetsHandler(deps Dependencies, defaults query.Params) *TargetsHandler {
	return &TargetsHandler{deps: deps, resolver: &paramResolver{defaults: defaults}}
}

// HandleGetTargets handles GET /api/targets?hour=H&time=HH:MM&day=D requests.
func (h *TargetsHandler) HandleGetTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
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
	writeJSON(w, http.StatusOK, toTargetList(out))
}

func toTargetList(out targeting.Outcome) types.TargetList {
	q := types.Query{Hour: out.Params.Hour, Minute: out.Params.Minute}
	if out.DayScored {
		q.Day = out.Params.Day
		q.DayName = out.Params.DayName()
	}

	targets := make([]types.Target, 0, out.Result.Len())
	for _, m := range out.Result.Matches {
		targets = append(targets, types.Target{
			NPI:                   m.NPI,
			State:                 m.State,
			Region:                m.Region,
			Speciality:            m.Speciality,
			AttendanceProbability: m.Probability,
		})
	}

	return types.TargetList{
		RunID:     out.RunID,
		Query:     q,
		Threshold: out.Result.Threshold,
		Ranked:    out.Result.Ranked,
		Count:     len(targets),
		Empty:     out.Result.Empty(),
		Message:   message(out),
		Targets:   targets,
	}
}

func message(out targeting.Outcome) string {
	if out.Result.Empty() {
		return NoMatchMessage
	}
	when := "at " + out.Params.Clock()
	if out.DayScored {
		when += " on " + out.Params.DayName()
	}
	return fmt.Sprintf("%d doctors likely to attend a survey %s", out.Result.Len(), when)
}
