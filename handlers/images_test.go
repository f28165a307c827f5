package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peisong-zhang/Human-AI-comparison/testutil"
)

func serveImageRequest(subsetID, modeID, path string) *http.Request {
	req := testutil.MakeRequest("GET", "/images/subsets/"+subsetID+"/"+modeID+"/"+path, nil, nil)
	req.SetPathValue("subset_id", subsetID)
	req.SetPathValue("mode_id", modeID)
	req.SetPathValue("path", path)
	return req
}

func TestServeImage(t *testing.T) {
	loader, _ := setupExperiment(t)
	handler := NewImagesHandler(loader)

	tests := []struct {
		name           string
		subsetID       string
		modeID         string
		path           string
		expectedStatus int
	}{
		{"existing image", "A", "human", "case_01.png", 200},
		{"unknown subset", "nope", "human", "case_01.png", 404},
		{"unknown mode for subset", "A", "ai", "case_01.png", 404},
		{"missing file", "A", "human", "case_99.png", 404},
		{"path traversal", "A", "human", "../../config/experiment.json", 400},
		{"directory request", "A", "human", ".", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeImage(w, serveImageRequest(tt.subsetID, tt.modeID, tt.path))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == 200 && w.Body.String() != "png-bytes" {
				t.Errorf("Unexpected image body: %q", w.Body.String())
			}
		})
	}
}

func TestServeImageNestedPath(t *testing.T) {
	loader, root := testutil.WriteExperiment(t, testExperimentJSON)
	testutil.TouchImage(t, root, "images/a/series1/slice_01.png")
	handler := NewImagesHandler(loader)

	w := httptest.NewRecorder()
	handler.ServeImage(w, serveImageRequest("A", "human", "series1/slice_01.png"))
	testutil.AssertStatus(t, w, 200)
}
