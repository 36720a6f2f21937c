package objectdetection

// Postprocessor defines a function that filters/modifies on an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewScoreFilter returns a function that filters out detections below a certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Score() >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewAreaFilter returns a function that filters out detections below a certain area.
func NewAreaFilter(area int) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.BoundingBox().Dx()*d.BoundingBox().Dy() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}

// ComposePostprocessors chains postprocessors left to right into one.
func ComposePostprocessors(post ...Postprocessor) Postprocessor {
	return func(in []Detection) []Detection {
		for _, p := range post {
			in = p(in)
		}
		return in
	}
}

// NewLabelFilter returns a function that keeps only the detections whose labels
// appear in the given set. An empty set keeps everything.
func NewLabelFilter(labels map[string]bool) Postprocessor {
	return func(in []Detection) []Detection {
		if len(labels) == 0 {
			return in
		}
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if labels[d.Label()] {
				out = append(out, d)
			}
		}
		return out
	}
}
