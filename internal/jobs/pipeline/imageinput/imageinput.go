// Package imageinput turns a stored image verification into the renditions the
// verification analyzer needs.
package imageinput

import (
	"context"
	"encoding/base64"
	"time"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/gcp"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const evidenceTimeout = 20 * time.Second

type Preparer struct {
	log      *logger.Logger
	images   services.ImageStore
	evidence gcp.VisionEvidenceService
}

// New returns a Preparer. evidence may be nil.
func New(baseLog *logger.Logger, images services.ImageStore, evidence gcp.VisionEvidenceService) *Preparer {
	return &Preparer{
		log:      baseLog.With("component", "ImageInput"),
		images:   images,
		evidence: evidence,
	}
}

// Prepared is one image ready for analysis. Bytes is nil when the download
// failed and the model falls back to the URL.
type Prepared struct {
	Input    verification.ImageInput
	Bytes    []byte
	Evidence *gcp.VisionEvidence
}

// Prepare refreshes the image URL, inlines the bytes as a data URL for the
// vision model and collects optional Vision evidence. Every step is best
// effort; the stored URL is the last resort.
func (p *Preparer) Prepare(ctx context.Context, rec *types.ImageVerification) Prepared {
	out := Prepared{Input: verification.ImageInput{PublicURL: rec.ImageURL}}
	log := p.log.With("verification_id", rec.ID)
	if p.images == nil {
		return out
	}
	if u := p.images.URL(rec.ImagePath); u != "" {
		out.Input.PublicURL = u
	}
	data, err := p.images.Download(ctx, rec.ImagePath)
	if err != nil || len(data) == 0 {
		log.Warn("Image download failed; vision model gets the URL", "key", rec.ImagePath, "error", err)
		return out
	}
	out.Bytes = data
	out.Input.ModelURL = DataURL(rec.ImagePath, data)

	if p.evidence != nil {
		ectx, cancel := context.WithTimeout(ctx, evidenceTimeout)
		ev, eerr := p.evidence.Annotate(ectx, data)
		cancel()
		if eerr != nil {
			log.Warn("Vision evidence failed", "error", eerr)
		} else {
			out.Evidence = ev
		}
	}
	return out
}

// DataURL encodes data as a base64 data URL using the MIME type implied by
// key's extension.
func DataURL(key string, data []byte) string {
	ct := gcp.ContentTypeForKey(key)
	if ct == "" {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// AttachEvidence stores ev under details["vision_evidence"].
func AttachEvidence(v *verification.ImageVerdict, ev *gcp.VisionEvidence) {
	if v == nil || ev == nil {
		return
	}
	if v.Details == nil {
		v.Details = map[string]any{}
	}
	v.Details["vision_evidence"] = ev
}
