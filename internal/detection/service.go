package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nadhir/smartsign/internal/classifier"
	"github.com/nadhir/smartsign/internal/detector"
)

// ErrImageDecode is returned when the submitted bytes are not a decodable
// image. Callers map it to a client error rather than a pipeline failure.
var ErrImageDecode = errors.New("could not decode image data")

const (
	// DefaultMinInterval throttles the fast path between consecutive
	// frames from the same service instance.
	DefaultMinInterval = 100 * time.Millisecond

	// cropQuality is the JPEG quality for classifier payloads. The same
	// bytes feed the content hash, so one encode serves both.
	cropQuality = 80
)

// Service runs the two-stage detection pipelines: landmark extraction to
// locate hands, then crop classification with vocabulary and geometry
// post-processing. One Service is shared by all requests; the extractor
// subprocess and the rate limiter state live here.
type Service struct {
	extractor  detector.Extractor
	classifier *classifier.Classifier
	cache      *Cache
	log        *zap.Logger

	mu          sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
	now         func() time.Time
}

// NewService creates a Service. A nil cache disables fast-path caching and
// a nil logger discards output.
func NewService(extractor detector.Extractor, cls *classifier.Classifier, cache *Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		extractor:   extractor,
		classifier:  cls,
		cache:       cache,
		log:         log,
		minInterval: DefaultMinInterval,
		now:         time.Now,
	}
}

// SetRateInterval overrides the minimum spacing between fast-path requests.
// Zero disables rate limiting.
func (s *Service) SetRateInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minInterval = d
}

// decodeImage decodes raw request bytes into a BGR Mat. The caller owns the
// returned Mat.
func decodeImage(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, ErrImageDecode
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, ErrImageDecode
	}
	return img, nil
}

// DetectAccurate runs the full multi-hand pipeline: every detected hand is
// cropped at high resolution and classified independently, and the single
// best validated candidate becomes the headline result. Extractor failures
// degrade to "no hands" so a wedged landmark subprocess never turns into a
// request error.
func (s *Service) DetectAccurate(ctx context.Context, imageData []byte) (*Result, error) {
	start := s.now()

	img, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	hands, err := s.extractor.Detect(img)
	if err != nil {
		s.log.Warn("landmark extraction failed", zap.Error(err))
		hands = nil
	}

	result := &Result{
		NumHands:      len(hands),
		BoundingBoxes: []BoundingBoxInfo{},
	}

	if len(hands) == 0 {
		result.Message = "no hands detected"
		result.ProcessingTime = s.now().Sub(start)
		return result, nil
	}

	var (
		best     *classifier.Candidate
		bestHand string
	)

	for i := range hands {
		hand := hands[i]

		crop := detector.Crop(img, hand.Box, detector.AccurateCropSize)
		payload, encErr := detector.EncodeJPEG(crop, cropQuality)
		crop.Close()
		if encErr != nil {
			s.log.Warn("crop encode failed",
				zap.String("hand", hand.Hand),
				zap.Error(encErr))
			result.Hands = append(result.Hands, HandResult{Hand: hand, Status: classifier.StatusEmpty})
			result.BoundingBoxes = append(result.BoundingBoxes, genericHandBox(hand))
			continue
		}

		outcome := s.classifier.Classify(ctx, payload, &hand.Landmarks)

		hr := HandResult{Hand: hand, Status: outcome.Status}
		if outcome.Candidate != nil {
			hr.Candidate = outcome.Candidate
			hr.Confidence = outcome.Candidate.Confidence
			hr.Validated = outcome.Candidate.Validated
		}
		result.Hands = append(result.Hands, hr)

		if outcome.Status == classifier.StatusMatched {
			result.BoundingBoxes = append(result.BoundingBoxes, classifiedHandBox(hand, outcome.Candidate))
			// Strictly greater keeps the first hand on ties.
			if best == nil || outcome.Candidate.Confidence > best.Confidence {
				best = outcome.Candidate
				bestHand = hand.Hand
			}
		} else {
			result.BoundingBoxes = append(result.BoundingBoxes, genericHandBox(hand))
		}
	}

	if best != nil {
		result.Success = true
		result.Label = best.Label
		result.Confidence = best.Confidence
		result.ModelUsed = best.ModelName
		result.Hand = bestHand
	} else {
		result.Message = "hands detected but no sign recognized"
	}

	result.ProcessingTime = s.now().Sub(start)
	return result, nil
}

// DetectFast runs the low-latency single-hand pipeline used by the live
// preview: the first detected hand only, a smaller crop, a rate limit, and
// a content-addressed result cache keyed on the re-encoded crop bytes.
func (s *Service) DetectFast(ctx context.Context, imageData []byte) (*Result, error) {
	start := s.now()

	// Check and reserve the slot in one critical section, so two frames
	// arriving together cannot both pass.
	s.mu.Lock()
	if now := s.now(); now.Sub(s.lastCall) < s.minInterval {
		s.mu.Unlock()
		return &Result{
			Message:       "rate limited",
			BoundingBoxes: []BoundingBoxInfo{},
		}, nil
	} else {
		s.lastCall = now
	}
	s.mu.Unlock()

	img, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	hands, err := s.extractor.Detect(img)
	if err != nil {
		s.log.Warn("landmark extraction failed", zap.Error(err))
		hands = nil
	}

	result := &Result{
		NumHands:      len(hands),
		BoundingBoxes: []BoundingBoxInfo{},
	}

	if len(hands) == 0 {
		result.Message = "no hands detected"
		result.ProcessingTime = s.now().Sub(start)
		return result, nil
	}

	hand := hands[0]
	result.NumHands = 1

	crop := detector.Crop(img, hand.Box, detector.FastCropSize)
	payload, err := detector.EncodeJPEG(crop, cropQuality)
	crop.Close()
	if err != nil {
		s.log.Warn("crop encode failed", zap.Error(err))
		result.Message = "hands detected but no sign recognized"
		result.BoundingBoxes = append(result.BoundingBoxes, genericHandBox(hand))
		result.ProcessingTime = s.now().Sub(start)
		return result, nil
	}

	var key string
	if s.cache != nil {
		key = HashCrop(payload)
		if cached, ok := s.cache.Get(key); ok {
			cached.FromCache = true
			cached.ProcessingTime = s.now().Sub(start)
			return &cached, nil
		}
	}

	outcome := s.classifier.Classify(ctx, payload, &hand.Landmarks)

	hr := HandResult{Hand: hand, Status: outcome.Status}
	if outcome.Candidate != nil {
		hr.Candidate = outcome.Candidate
		hr.Confidence = outcome.Candidate.Confidence
		hr.Validated = outcome.Candidate.Validated
	}
	result.Hands = append(result.Hands, hr)

	if outcome.Status == classifier.StatusMatched {
		cand := outcome.Candidate
		result.Success = true
		result.Label = cand.Label
		result.Confidence = cand.Confidence
		result.ModelUsed = cand.ModelName
		result.Hand = hand.Hand
		result.BoundingBoxes = append(result.BoundingBoxes, classifiedHandBox(hand, cand))

		if s.cache != nil {
			s.cache.Put(key, *result)
		}
	} else {
		result.Message = "hands detected but no sign recognized"
		result.BoundingBoxes = append(result.BoundingBoxes, genericHandBox(hand))
	}

	result.ProcessingTime = s.now().Sub(start)
	return result, nil
}

// Close shuts down the underlying extractor.
func (s *Service) Close() error {
	return s.extractor.Close()
}
