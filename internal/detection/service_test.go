package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/nadhir/smartsign/internal/classifier"
	"github.com/nadhir/smartsign/internal/detector"
)

// countingClient returns one canned prediction and counts invocations.
type countingClient struct {
	prediction classifier.Prediction
	calls      int
}

func (c *countingClient) Infer(ctx context.Context, imageJPEG []byte, modelID string) ([]classifier.Prediction, error) {
	c.calls++
	return []classifier.Prediction{c.prediction}, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	data, err := detector.EncodeJPEG(img, 80)
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return data
}

func newTestService(t *testing.T, extractor detector.Extractor, client classifier.InferenceClient) *Service {
	t.Helper()
	cls := classifier.New(client, nil, 0, nil, nil)
	svc := NewService(extractor, cls, NewCache(0, 0), nil)
	svc.minInterval = 0
	return svc
}

func TestDetectAccurate_InvalidImage(t *testing.T) {
	svc := newTestService(t, detector.NewMockExtractor(), &countingClient{})

	_, err := svc.DetectAccurate(context.Background(), []byte("not an image"))
	if !errors.Is(err, ErrImageDecode) {
		t.Errorf("expected ErrImageDecode, got %v", err)
	}
}

func TestDetectAccurate_NoHands(t *testing.T) {
	svc := newTestService(t, detector.NewMockExtractor(), &countingClient{})

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Success {
		t.Error("no hands should not succeed")
	}
	if result.NumHands != 0 {
		t.Errorf("expected 0 hands, got %d", result.NumHands)
	}
	if result.Message != "no hands detected" {
		t.Errorf("unexpected message %q", result.Message)
	}
	if result.BoundingBoxes == nil {
		t.Error("bounding boxes should be an empty slice, not nil")
	}
}

func TestDetectAccurate_ExtractorErrorDegradesToNoHands(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetError(errors.New("subprocess wedged"))
	svc := newTestService(t, mock, &countingClient{})

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("extractor failure should not become a request error: %v", err)
	}
	if result.Success || result.NumHands != 0 {
		t.Errorf("expected no-hands result, got %+v", result)
	}
}

func TestDetectAccurate_RecognizedSign(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{detector.OpenPalmDetection()})

	client := &countingClient{prediction: classifier.Prediction{Class: "TOLONG", Confidence: 0.8}}
	svc := newTestService(t, mock, client)

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Fatalf("expected success: %+v", result)
	}
	if result.Label != "TOLONG" {
		t.Errorf("expected label TOLONG, got %q", result.Label)
	}
	if result.Hand != "Right" {
		t.Errorf("expected right hand, got %q", result.Hand)
	}
	if result.NumHands != 1 || len(result.Hands) != 1 {
		t.Errorf("expected one hand result, got %+v", result)
	}

	if len(result.BoundingBoxes) != 1 {
		t.Fatalf("expected one bounding box, got %d", len(result.BoundingBoxes))
	}
	box := result.BoundingBoxes[0]
	if box.Class != "TOLONG" {
		t.Errorf("matched box should carry the sign label, got %q", box.Class)
	}
}

func TestDetectAccurate_UnrecognizedHandStillBoxed(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{detector.FistDetection()})

	// Confidence below the acceptance threshold
	client := &countingClient{prediction: classifier.Prediction{Class: "TOLONG", Confidence: 0.05}}
	svc := newTestService(t, mock, client)

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Success {
		t.Error("below-threshold prediction should not succeed")
	}
	if result.Message != "hands detected but no sign recognized" {
		t.Errorf("unexpected message %q", result.Message)
	}

	if len(result.BoundingBoxes) != 1 {
		t.Fatalf("hand should be boxed even without a sign, got %d boxes", len(result.BoundingBoxes))
	}
	box := result.BoundingBoxes[0]
	if box.Class != "Hand" {
		t.Errorf("generic box should be class Hand, got %q", box.Class)
	}
	if box.Color != "#00FF00" {
		t.Errorf("right hand should be green, got %q", box.Color)
	}
}

func TestDetectAccurate_FalsePositiveFiltered(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{detector.OpenPalmDetection()})

	// Confident prediction of a known false positive
	client := &countingClient{prediction: classifier.Prediction{Class: "THE", Confidence: 0.9}}
	svc := newTestService(t, mock, client)

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Success {
		t.Error("filtered prediction should not succeed")
	}
	if result.Label != "" {
		t.Errorf("filtered prediction should carry no label, got %q", result.Label)
	}
	if result.Message != "hands detected but no sign recognized" {
		t.Errorf("unexpected message %q", result.Message)
	}

	if len(result.Hands) != 1 {
		t.Fatalf("expected one hand result, got %+v", result)
	}
	if result.Hands[0].Status != classifier.StatusFiltered {
		t.Errorf("expected filtered status, got %q", result.Hands[0].Status)
	}

	if len(result.BoundingBoxes) != 1 {
		t.Fatalf("hand should still be boxed, got %d boxes", len(result.BoundingBoxes))
	}
	box := result.BoundingBoxes[0]
	if box.Class != "Hand" {
		t.Errorf("generic box should be class Hand, got %q", box.Class)
	}
	if box.Color != "#00FF00" {
		t.Errorf("right hand should be green, got %q", box.Color)
	}
}

func TestDetectAccurate_BestHandWinsOnTieFirst(t *testing.T) {
	right := detector.OpenPalmDetection()
	left := detector.OpenPalmDetection()
	left.Hand = "Left"

	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{right, left})

	client := &countingClient{prediction: classifier.Prediction{Class: "TOLONG", Confidence: 0.8}}
	svc := newTestService(t, mock, client)

	result, err := svc.DetectAccurate(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NumHands != 2 || len(result.BoundingBoxes) != 2 {
		t.Fatalf("expected two hands boxed, got %+v", result)
	}
	// Equal confidences keep the first hand
	if result.Hand != "Right" {
		t.Errorf("tie should keep the first hand, got %q", result.Hand)
	}
}

func TestDetectFast_RateLimited(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{detector.OpenPalmDetection()})

	client := &countingClient{prediction: classifier.Prediction{Class: "TOLONG", Confidence: 0.8}}
	svc := newTestService(t, mock, client)
	svc.minInterval = time.Hour

	first, err := svc.DetectFast(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Success {
		t.Fatalf("first call should pass the limiter: %+v", first)
	}

	second, err := svc.DetectFast(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Success || second.Message != "rate limited" {
		t.Errorf("second call should be rate limited, got %+v", second)
	}
	if mock.Calls() != 1 {
		t.Errorf("rate-limited call should not reach the extractor, calls=%d", mock.Calls())
	}
}

func TestDetectFast_CachesSuccessfulResults(t *testing.T) {
	mock := detector.NewMockExtractor()
	mock.SetHands([]detector.HandDetection{detector.OpenPalmDetection()})

	client := &countingClient{prediction: classifier.Prediction{Class: "TOLONG", Confidence: 0.8}}
	svc := newTestService(t, mock, client)

	image := testJPEG(t)

	first, err := svc.DetectFast(context.Background(), image)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Success || first.FromCache {
		t.Fatalf("first call should classify fresh: %+v", first)
	}

	second, err := svc.DetectFast(context.Background(), image)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.FromCache {
		t.Error("identical crop should hit the cache")
	}
	if second.Label != "TOLONG" {
		t.Errorf("cached result should carry the label, got %q", second.Label)
	}
	if client.calls != 1 {
		t.Errorf("cache hit should not re-classify, calls=%d", client.calls)
	}
}

func TestDetectFast_NoHands(t *testing.T) {
	svc := newTestService(t, detector.NewMockExtractor(), &countingClient{})

	result, err := svc.DetectFast(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.Message != "no hands detected" {
		t.Errorf("expected no-hands result, got %+v", result)
	}
}
