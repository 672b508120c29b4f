package vision

import (
	"context"
	"fmt"
	"strings"
)

const objectPrompt = `List every distinct object visible in this image.
Answer with one short common noun per line (for example "bottle" or "cell phone"), lowercase, no numbering and no other text.
If nothing is visible answer with NONE.`

// 顔の感情として返してよい語
var Emotions = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

var emotionPrompt = fmt.Sprintf(`Look at the most prominent face in this image and name its dominant emotion.
Answer with exactly one word from this list: %s.`, strings.Join(Emotions, ", "))

// ObjectLabeler は画像に写っている物体名を返す。
type ObjectLabeler struct {
	gen Generator
}

func NewObjectLabeler(gen Generator) *ObjectLabeler {
	return &ObjectLabeler{gen: gen}
}

func (l *ObjectLabeler) Labels(ctx context.Context, image []byte) ([]string, error) {
	text, err := l.gen.Generate(ctx, objectPrompt, image)
	if err != nil {
		return nil, err
	}
	return parseLabels(text), nil
}

// 1行1ラベル。箇条書き記号や番号は落とし、同じフレーム内の重複は1つにする。
func parseLabels(text string) []string {
	labels := make([]string, 0)
	seen := map[string]struct{}{}
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' }) {
		l := strings.TrimSpace(line)
		l = strings.TrimLeft(l, "-*•0123456789. )")
		l = strings.Trim(strings.TrimSpace(l), `"'.`)
		if l == "" || strings.EqualFold(l, "none") {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, l)
	}
	return labels
}

// EmotionClassifier は顔の主な感情を返す。
type EmotionClassifier struct {
	gen Generator
}

func NewEmotionClassifier(gen Generator) *EmotionClassifier {
	return &EmotionClassifier{gen: gen}
}

func (c *EmotionClassifier) DominantEmotion(ctx context.Context, image []byte) (string, error) {
	text, err := c.gen.Generate(ctx, emotionPrompt, image)
	if err != nil {
		return "", err
	}
	return parseEmotion(text)
}

func parseEmotion(text string) (string, error) {
	lower := strings.ToLower(text)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool { return r < 'a' || r > 'z' }) {
		for _, e := range Emotions {
			if w == e {
				return e, nil
			}
		}
	}
	return "", fmt.Errorf("no emotion in model answer: %q", strings.TrimSpace(text))
}
