package gcp

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

// VisionEvidence is supplementary, non-authoritative context about an image:
// text it contains and where else it appears on the web.
type VisionEvidence struct {
	OCRText          string   `json:"ocr_text,omitempty"`
	BestGuessLabels  []string `json:"best_guess_labels,omitempty"`
	WebEntities      []string `json:"web_entities,omitempty"`
	MatchingPages    []string `json:"matching_pages,omitempty"`
	SpoofLikelihood  string   `json:"spoof_likelihood,omitempty"`
	FullMatchesFound int      `json:"full_matches_found"`
}

type VisionEvidenceService interface {
	Annotate(ctx context.Context, img []byte) (*VisionEvidence, error)
	Close() error
}

type visionEvidenceService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVisionEvidenceService(ctx context.Context, log *logger.Logger) (VisionEvidenceService, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionEvidenceService{log: log.With("service", "VisionEvidence"), client: client}, nil
}

func (s *visionEvidenceService) Annotate(ctx context.Context, img []byte) (*VisionEvidence, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	resp, err := s.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_TEXT_DETECTION},
				{Type: visionpb.Feature_WEB_DETECTION, MaxResults: 5},
				{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("batch annotate: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("batch annotate: empty response")
	}
	r := resp.GetResponses()[0]
	if st := r.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("batch annotate: %s", st.GetMessage())
	}
	return evidenceFromResponse(r), nil
}

func (s *visionEvidenceService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func evidenceFromResponse(r *visionpb.AnnotateImageResponse) *VisionEvidence {
	ev := &VisionEvidence{}
	ev.OCRText = truncate(strings.TrimSpace(r.GetFullTextAnnotation().GetText()), 1000)
	if web := r.GetWebDetection(); web != nil {
		for _, l := range web.GetBestGuessLabels() {
			if lbl := strings.TrimSpace(l.GetLabel()); lbl != "" {
				ev.BestGuessLabels = append(ev.BestGuessLabels, lbl)
			}
		}
		for _, e := range web.GetWebEntities() {
			if d := strings.TrimSpace(e.GetDescription()); d != "" {
				ev.WebEntities = append(ev.WebEntities, d)
			}
		}
		for _, p := range web.GetPagesWithMatchingImages() {
			if u := strings.TrimSpace(p.GetUrl()); u != "" {
				ev.MatchingPages = append(ev.MatchingPages, u)
			}
		}
		ev.FullMatchesFound = len(web.GetFullMatchingImages())
	}
	if ss := r.GetSafeSearchAnnotation(); ss != nil {
		ev.SpoofLikelihood = strings.ToLower(ss.GetSpoof().String())
	}
	return ev
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
