package views

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

// csrfVals renders the request's CSRF token as an hx-vals JSON object so
// htmx-issued POSTs pass the double-submit check.
func csrfVals(ctx context.Context) string {
	b, err := json.Marshal(map[string]string{"csrf_token": model.CSRFTokenFromContext(ctx)})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func csrfToken(ctx context.Context) string {
	return model.CSRFTokenFromContext(ctx)
}

func resultPath(examID string) string {
	return "/dashboard/exams/" + examID + "/result"
}

func togglePath(number int) string {
	return "/dashboard/questions/" + strconv.Itoa(number) + "/toggle"
}

func fileSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func uploadedAgo(t time.Time) string {
	return humanize.Time(t)
}
