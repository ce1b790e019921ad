package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

const dateLayout = "02/01/2006"

func textAdjudicationPrompt(claim string, c Classification, r Retrieval, now time.Time) string {
	today := now.Format(dateLayout)
	var b strings.Builder

	fmt.Fprintf(&b, "You are a fact-checking expert. Carefully weigh all of the information below to decide whether the claim is true.\n\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", today)
	fmt.Fprintf(&b, "CLAIM TO VERIFY: %s\n\n", claim)

	fmt.Fprintf(&b, "AUTOMATIC PRE-CLASSIFICATION (advisory only):\n")
	fmt.Fprintf(&b, "A text classifier labelled the claim %q with confidence %.0f%% (supports = probably true, refutes = probably false).\n\n", c.Label, c.Confidence*100)

	b.WriteString("WEB RESEARCH SUMMARY:\n")
	if strings.TrimSpace(r.Summary) != "" {
		b.WriteString(r.Summary)
	} else {
		b.WriteString("No research summary is available.")
	}
	b.WriteString("\n\nWEB SOURCES:")
	if len(r.Sources) == 0 {
		b.WriteString("\nNo specific web source was found.")
	}
	for i, s := range r.Sources {
		title := s.Title
		if title == "" {
			title = "Untitled source"
		}
		fmt.Fprintf(&b, "\n%d. TITLE: %s", i+1, title)
		fmt.Fprintf(&b, "\n   URL: %s", s.Link)
		if s.Date != "" {
			fmt.Fprintf(&b, "\n   DATE: %s", s.Date)
		}
		if s.Snippet != "" {
			fmt.Fprintf(&b, "\n   CONTENT: %s", s.Snippet)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `

INSTRUCTIONS:
1. Use the current date (%[1]s) to decide whether the events mentioned are past, present or future.
2. When several similar events match, always prefer the most recent one.
3. Look for specific facts in the sources: scores, results, named outcomes, official confirmations.
4. For companies and public figures, check recent changes (appointments, departures) before historical information.
5. If an event looks like it is in the future but the sources show it already happened, trust the sources.
6. Ignore the automatic pre-classification whenever the sources clearly contradict it.
7. Sources confirming the claim with specific details make it TRUE.
8. Sources contradicting the claim make it FALSE.
9. Insufficient or contradictory sources make it UNDETERMINED.

Reply STRICTLY with this JSON object and nothing else:
{
  "verdict": "TRUE|FALSE|UNDETERMINED",
  "confidence": 0-100,
  "explanation": "Detailed explanation in French grounded in the sources and the temporal context",
  "primary_sources": ["URL1", "URL2", "URL3"]
}

Base the decision on SPECIFIC FACTS found in the sources, not on general announcements or the automatic pre-classification.`, today)
	return b.String()
}

func contentPrompt(claim string, now time.Time) string {
	today := now.Format(dateLayout)
	year := now.Year()
	if strings.TrimSpace(claim) != "" {
		return fmt.Sprintf(`You are an expert in image-based fact checking. Today is %[1]s (year %[2]d).

Analyse this image and decide whether the following claim is TRUE or FALSE:

**CLAIM TO VERIFY:** %[3]s

Instructions:
1. Describe in detail what you see in the image.
2. Check whether the claim matches what is visible.
3. Check temporal consistency (dates, events) against the current date (%[1]s).
4. Look for inconsistencies, manipulation or suspicious elements.
5. Assess the credibility of the image (quality, context, coherence).

The "confidence" field is how sure you are of your verdict (0-100).

Answer in French.`, today, year, claim)
	}
	return fmt.Sprintf(`You are an image analysis expert. Today is %[1]s (year %[2]d).

Analyse this image in detail and provide:
1. A complete description of what is visible.
2. An assessment of the image's authenticity.
3. Any manipulation or inconsistency you can detect.
4. The likely context of the image.
5. Elements that could help verify its origin.

The "confidence" field is how sure you are of your analysis (0-100).

Answer in French.`, today, year)
}

func detectionPrompt(forensic ForensicScore) string {
	p := `You are a digital image forensics expert specialised in detecting AI-generated images and deepfakes.

Analyse this image CRITICALLY. Do NOT assume an image is authentic by default: modern generators (Midjourney, DALL-E, Stable Diffusion, Flux, Gemini) produce very realistic results.

Be honest: if you do not see a clear defect, say so. Never invent artefacts. But examine every category carefully.

Examine SYSTEMATICALLY:

1. **Text and lettering**: illegible text, distorted letters, invented or incoherent words. One of the MOST RELIABLE indicators. Read every visible word.
2. **Faces and anatomy**: abnormal asymmetry, mismatched eyes, fused or blurry teeth, incoherent ears, wrong finger counts, deformed hands.
3. **Backgrounds**: repeating patterns, objects melting into each other, impossible architecture, crowds with uniform or blurred faces.
4. **Lighting and shadows**: inconsistent shadow directions, impossible reflections, lighting that does not match the scene.
5. **Textures and materials**: blurry transitions between skin, hair and clothing; textures that are too smooth or uniform.
6. **Overall coherence**: wrong perspective, abnormal proportions, bleeding object edges.
7. **Watermarks and logos**: generator watermarks in corners or borders.

DECISION RULES:
- Illegible or invented text means a high AI likelihood.
- Hands with the wrong number of fingers mean a high AI likelihood.
- Uniformly blurred or similar background faces suggest AI.
- A visible generator watermark means certainly AI.
- A "too perfect" image (ideal lighting, stock composition, overly smooth skin) is suspicious.
- No artefact and natural imperfections suggest an authentic image.
- When in doubt, lean towards UNCERTAIN rather than AUTHENTIC.

"confidence" is how sure you are of your verdict (not the AI likelihood).
"ai_probability" is the probability that the image is AI-generated.

Answer in French.`
	if forensic.Available {
		p += fmt.Sprintf(`

ADDITIONAL NOTE: our pixel-level analyser estimated a %d%% probability that this image is AI-generated. This score is reliable and you may mention it as "our pixel analyser". Still perform your own independent visual analysis and report the artefacts YOU observe, not what the score suggests. The final verdict and score are decided by the pixel analyser. Never name any third-party tool or service.`, forensicPercent(forensic.Score))
	}
	return p
}

var contentSchemaWithClaim = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"verdict":      {Type: jsonschema.String, Enum: []string{"TRUE", "FALSE", "UNDETERMINED"}, Description: "Verdict on the claim"},
		"confidence":   {Type: jsonschema.Integer, Description: "Confidence in the verdict (0-100)"},
		"explanation":  {Type: jsonschema.String, Description: "Detailed analysis in French, markdown allowed"},
		"key_elements": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}, Description: "Key elements used for the verification"},
	},
	Required:             []string{"verdict", "confidence", "explanation", "key_elements"},
	AdditionalProperties: false,
}

var contentSchemaNoClaim = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"verdict":      {Type: jsonschema.String, Enum: []string{"ANALYZED"}, Description: "Always ANALYZED when there is no claim"},
		"confidence":   {Type: jsonschema.Integer, Description: "Confidence in the analysis (0-100)"},
		"explanation":  {Type: jsonschema.String, Description: "Detailed analysis in French, markdown allowed"},
		"key_elements": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}, Description: "Key elements identified in the image"},
	},
	Required:             []string{"verdict", "confidence", "explanation", "key_elements"},
	AdditionalProperties: false,
}

var detectionSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"verdict":             {Type: jsonschema.String, Enum: []string{"AUTHENTIC", "AI_DETECTED", "UNCERTAIN"}, Description: "Final verdict on the image"},
		"confidence":          {Type: jsonschema.Integer, Description: "Confidence in the verdict (0-100)"},
		"ai_probability":      {Type: jsonschema.Integer, Description: "Probability the image is AI-generated (0-100)"},
		"explanation":         {Type: jsonschema.String, Description: "Detailed analysis in French, markdown allowed"},
		"suspicious_elements": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
		"authentic_elements":  {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
	},
	Required:             []string{"verdict", "confidence", "ai_probability", "explanation", "suspicious_elements", "authentic_elements"},
	AdditionalProperties: false,
}
