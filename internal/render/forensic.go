package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/occlusion"
)

// ForensicTextRender writes the combined forensic report in the format
// expected by investigators reviewing disguise and mask cases.
func ForensicTextRender(w io.Writer, result occlusion.ForensicResult) error {
	_, err := fmt.Fprintf(w,
		"================= FORENSIC COMBINED REPORT =================\n"+
			"Core similarity        : %.3f\n"+
			"Core verdict           : %s\n"+
			"Core confidence        : %.1f%%\n"+
			"Upper-face similarity  : %.3f\n"+
			"Upper-face time        : %.2fs\n"+
			"============================================================\n"+
			"COMBINED FORENSIC LABEL: %s\n",
		result.Core.Similarity,
		result.Core.Verdict,
		result.Core.Confidence,
		result.UpperSimilarity,
		result.UpperTime,
		result.Label,
	)
	return err
}

// ForensicJSONRender writes the exported forensic result as indented JSON.
func ForensicJSONRender(w io.Writer, result occlusion.ForensicResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Export())
}
