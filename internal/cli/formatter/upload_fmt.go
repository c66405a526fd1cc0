package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casework/internal/service"
)

// FormatUploadReport renders one line per attempted document plus a summary.
func FormatUploadReport(r *service.UploadReport) string {
	if r == nil || len(r.Results) == 0 {
		return Dim("No documents were pending.")
	}

	var b strings.Builder
	for _, res := range r.Results {
		if res.Err != nil {
			fmt.Fprintf(&b, "%s %s  %s\n", StyleRed.Render("✖"), res.Label, Dim(res.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "%s %s  %s\n", StyleGreen.Render("✔"), res.Label, Dim(fmt.Sprintf("category %d", res.CategoryID)))
	}

	summary := fmt.Sprintf("%d uploaded, %d failed", r.Succeeded, r.Failed)
	if r.Failed > 0 {
		b.WriteString(StyleYellow.Render(summary))
	} else {
		b.WriteString(StyleGreen.Render(summary))
	}
	return b.String()
}
