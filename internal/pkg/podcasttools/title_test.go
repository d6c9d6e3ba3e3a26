package podcasttools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTitleGenerator_Generate(t *testing.T) {
	Convey("TitleGenerator.Generate", t, func() {
		ctx := context.Background()
		longText := strings.Repeat("a", 1200)

		Convey("对话取样 1000 字符并清理引号与空白", func() {
			llm := &mockLLMProvider{invokeFunc: func(ctx context.Context, system, user string) (string, error) {
				So(len([]rune(user)), ShouldEqual, 1000)
				So(system, ShouldContainSubstring, "podcast episode")
				return "  “The   Future of\tWork” \n", nil
			}}
			So(NewTitleGenerator(llm).Generate(ctx, longText, TitleKindDialogue), ShouldEqual, "The Future of Work")
		})

		Convey("摘要取样 800 字符", func() {
			llm := &mockLLMProvider{invokeFunc: func(ctx context.Context, system, user string) (string, error) {
				So(len([]rune(user)), ShouldEqual, 800)
				return "'Summary Title'", nil
			}}
			So(NewTitleGenerator(llm).Generate(ctx, longText, TitleKindSummary), ShouldEqual, "Summary Title")
		})

		Convey("正文不足 50 字符时不调用模型", func() {
			llm := &mockLLMProvider{}
			So(NewTitleGenerator(llm).Generate(ctx, "too short", TitleKindDialogue), ShouldEqual, "")
			So(llm.calls, ShouldEqual, 0)
		})

		Convey("模型错误或空标题返回空字符串", func() {
			llm := &mockLLMProvider{invokeFunc: func(ctx context.Context, system, user string) (string, error) {
				return "", errors.New("timeout")
			}}
			So(NewTitleGenerator(llm).Generate(ctx, longText, TitleKindDialogue), ShouldEqual, "")

			llm.invokeFunc = func(ctx context.Context, system, user string) (string, error) { return `""`, nil }
			So(NewTitleGenerator(llm).Generate(ctx, longText, TitleKindDialogue), ShouldEqual, "")
		})
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Future of Work", "The_Future_of_Work"},
		{"AI: What's Next?!", "AI_Whats_Next"},
		{"  spaced   out  ", "spaced_out"},
		{"keep-dash_and_underscore", "keep-dash_and_underscore"},
		{"Café über 2024", "Café_über_2024"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArtifactBaseName(t *testing.T) {
	Convey("ArtifactBaseName", t, func() {
		now := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
		runID := "123e4567-e89b-12d3-a456-426614174000"

		Convey("有标题时使用 slug", func() {
			So(ArtifactBaseName("The Future of Work", now, runID), ShouldEqual, "The_Future_of_Work_20240309_123e4567")
		})

		Convey("无标题或清洗后为空时使用日期兜底", func() {
			So(ArtifactBaseName("", now, runID), ShouldEqual, "artifact_20240309_123e4567")
			So(ArtifactBaseName("???", now, runID), ShouldEqual, "artifact_20240309_123e4567")
		})

		Convey("不同运行同一天不会冲突", func() {
			other := "987e4567-e89b-12d3-a456-426614174000"
			So(ArtifactBaseName("", now, runID), ShouldNotEqual, ArtifactBaseName("", now, other))
		})
	})
}
