package podcasttools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	"tubecast/internal/pkg/id"
)

// minTitleSourceRunes 正文短于该长度时不生成标题
const minTitleSourceRunes = 50

// fallbackArtifactName 没有标题时的文件名前缀
const fallbackArtifactName = "artifact"

var whitespaceRe = regexp.MustCompile(`\s+`)

// TitleGenerator 标题生成器
// 失败时返回空字符串，调用方退回日期文件名
type TitleGenerator struct {
	llm LLMProvider
}

// NewTitleGenerator 创建标题生成器
func NewTitleGenerator(llm LLMProvider) *TitleGenerator {
	return &TitleGenerator{llm: llm}
}

// Generate 从正文开头取样生成 4-8 个词的标题，失败返回 ""
func (g *TitleGenerator) Generate(ctx context.Context, text string, kind TitleKind) string {
	title, err := g.generate(ctx, text, kind)
	if err != nil {
		log.Warn().Err(err).Msg("title generation failed, falling back to dated filename")
		return ""
	}
	return title
}

func (g *TitleGenerator) generate(ctx context.Context, text string, kind TitleKind) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: llm provider is required", ErrTitleGenerationFailed)
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) < minTitleSourceRunes {
		return "", fmt.Errorf("%w: text too short (%d chars)", ErrTitleGenerationFailed, len(runes))
	}
	if n := kind.sampleRunes(); len(runes) > n {
		runes = runes[:n]
	}

	raw, err := g.llm.Invoke(ctx, titlePrompt(kind), string(runes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTitleGenerationFailed, err)
	}
	title := CleanTitle(raw)
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrTitleGenerationFailed)
	}
	return title, nil
}

// CleanTitle 去掉首尾引号并合并空白
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”‘’«»")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slugify 把标题转换为文件名片段
// 保留字母、数字、空格、- 和 _，空白串替换为 _，其余字符丢弃
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	slug := strings.TrimSpace(b.String())
	return whitespaceRe.ReplaceAllString(slug, "_")
}

// ArtifactBaseName 生成不含扩展名的产物文件名: <slug>_<YYYYMMDD>_<runid8>
// 标题为空或清洗后为空时使用 artifact_<YYYYMMDD>_<runid8>
func ArtifactBaseName(title string, now time.Time, runID string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = fallbackArtifactName
	}
	name := slug + "_" + now.Format("20060102")
	if short := id.Short(runID); short != "" {
		name += "_" + short
	}
	return name
}
