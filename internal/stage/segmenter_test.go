package stage

import (
	"context"
	"strings"
	"testing"

	"github.com/scarflab/scarf/internal/model"
)

func pipelineConfig() model.PipelineConfig {
	return model.PipelineConfig{
		SegmentBatchSize:      5,
		ExcludedRoles:         []string{"limitations"},
		ContextChars:          6000,
		PreviewChars:          800,
		AssumptionTemperature: 0.7,
	}
}

func threeSectionDoc() *model.Document {
	return &model.Document{
		DocID: "doc-1",
		Sections: []model.Section{
			{SectionID: "S1", Title: "Introduction", PageRange: []int{1}, Content: "We introduce the problem."},
			{SectionID: "S2", Title: "Methods", PageRange: []int{2}, Content: "We ran a controlled experiment."},
			{SectionID: "S3", Title: "Results", PageRange: []int{3}, Content: "Accuracy improved by 12%."},
		},
	}
}

func TestSegmenter_ClassifiesSections(t *testing.T) {
	gw := &stubGateway{responses: []stubCall{
		{text: `[
			{"section_id": "S1", "role": "background", "confidence": 0.9},
			{"section_id": "S2", "role": "method", "confidence": 0.95},
			{"section_id": "S3", "role": "results", "confidence": 0.85}
		]`},
	}}

	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), threeSectionDoc())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rhetoric.Roles) != 3 {
		t.Fatalf("Expected 3 roles, got %d", len(rhetoric.Roles))
	}
	if got := rhetoric.RoleOf("S2"); got != model.RoleMethod {
		t.Errorf("RoleOf(S2) = %q", got)
	}
	if len(gw.prompts) != 1 {
		t.Errorf("Expected one batched call, got %d", len(gw.prompts))
	}
	if !strings.Contains(gw.prompts[0], "SECTION_ID: S3") {
		t.Error("Expected all sections in the batch prompt")
	}
}

func TestSegmenter_SynonymAndClampNormalized(t *testing.T) {
	gw := &stubGateway{responses: []stubCall{
		{text: `[
			{"section_id": "S1", "role": "Introduction", "confidence": 1.4},
			{"section_id": "S2", "role": "methodology", "confidence": -3},
			{"section_id": "S3", "role": "made-up-role", "confidence": 0.5}
		]`},
	}}

	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), threeSectionDoc())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := rhetoric.RoleOf("S1"); got != model.RoleBackground {
		t.Errorf("RoleOf(S1) = %q, want background", got)
	}
	if got := rhetoric.RoleOf("S2"); got != model.RoleMethod {
		t.Errorf("RoleOf(S2) = %q, want method", got)
	}
	if got := rhetoric.RoleOf("S3"); got != model.RoleBody {
		t.Errorf("RoleOf(S3) = %q, want body fallback", got)
	}
	for _, r := range rhetoric.Roles {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("Confidence %v for %s out of bounds", r.Confidence, r.SectionID)
		}
	}
}

func TestSegmenter_GatewayFailureDegradesToBody(t *testing.T) {
	gw := &failingGateway{err: context.DeadlineExceeded}

	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), threeSectionDoc())
	if err != nil {
		t.Fatalf("Expected degraded result, got error %v", err)
	}

	if len(rhetoric.Roles) != 3 {
		t.Fatalf("Expected fallback role per section, got %d", len(rhetoric.Roles))
	}
	for _, r := range rhetoric.Roles {
		if r.Role != model.RoleBody {
			t.Errorf("Role for %s = %q, want body", r.SectionID, r.Role)
		}
		if r.Confidence != model.FallbackConfidence {
			t.Errorf("Confidence for %s = %v, want %v", r.SectionID, r.Confidence, model.FallbackConfidence)
		}
	}
}

func TestSegmenter_UnparseableResponseDegradesToBody(t *testing.T) {
	gw := &stubGateway{responses: []stubCall{{text: "sorry, no JSON today"}}}

	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), threeSectionDoc())
	if err != nil {
		t.Fatalf("Expected degraded result, got error %v", err)
	}
	for _, r := range rhetoric.Roles {
		if r.Role != model.RoleBody || r.Confidence != model.FallbackConfidence {
			t.Errorf("Expected body fallback, got %+v", r)
		}
	}
}

func TestSegmenter_UnknownAndMissingSectionIDs(t *testing.T) {
	gw := &stubGateway{responses: []stubCall{
		{text: `[
			{"section_id": "S1", "role": "background", "confidence": 0.9},
			{"section_id": "S99", "role": "results", "confidence": 0.9}
		]`},
	}}

	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), threeSectionDoc())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rhetoric.Roles) != 3 {
		t.Fatalf("Expected 3 roles, got %d: %+v", len(rhetoric.Roles), rhetoric.Roles)
	}
	for _, r := range rhetoric.Roles {
		if r.SectionID == "S99" {
			t.Error("Hallucinated section ID survived")
		}
	}
	// S2 and S3 were not classified; they get the body fallback
	for _, id := range []string{"S2", "S3"} {
		if got := rhetoric.RoleOf(id); got != model.RoleBody {
			t.Errorf("RoleOf(%s) = %q, want body", id, got)
		}
	}
}

func TestSegmenter_BatchesLargeDocuments(t *testing.T) {
	doc := &model.Document{DocID: "doc-2"}
	for i := 0; i < 7; i++ {
		doc.Sections = append(doc.Sections, model.Section{
			SectionID: "S" + string(rune('1'+i)),
			Title:     "Section",
			Content:   "some content",
		})
	}

	gw := &stubGateway{responses: []stubCall{{text: `[]`}, {text: `[]`}}}
	progress, msgs := collectProgress(t)
	s := NewSegmenter(gw, pipelineConfig(), progress, testLogger())
	rhetoric, err := s.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(gw.prompts) != 2 {
		t.Errorf("Expected 2 batched calls for 7 sections, got %d", len(gw.prompts))
	}
	if len(rhetoric.Roles) != 7 {
		t.Errorf("Expected 7 roles, got %d", len(rhetoric.Roles))
	}
	if len(*msgs) != 2 {
		t.Errorf("Expected a progress message per batch, got %v", *msgs)
	}
}

func TestSegmenter_SkipsEmptySections(t *testing.T) {
	doc := &model.Document{
		DocID: "doc-3",
		Sections: []model.Section{
			{SectionID: "S1", Title: "Introduction", Content: "real content"},
			{SectionID: "S2", Title: "Blank", Content: "   "},
		},
	}

	gw := &stubGateway{responses: []stubCall{
		{text: `[{"section_id": "S1", "role": "background", "confidence": 0.9}]`},
	}}
	s := NewSegmenter(gw, pipelineConfig(), nil, testLogger())
	rhetoric, err := s.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rhetoric.Roles) != 1 {
		t.Fatalf("Expected 1 role, got %d", len(rhetoric.Roles))
	}
	if strings.Contains(gw.prompts[0], "S2") {
		t.Error("Empty section leaked into the prompt")
	}
}
