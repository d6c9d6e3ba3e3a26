package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tubecast/internal/pkg/podcasttools"
)

func TestStateTransitions(t *testing.T) {
	Convey("State", t, func() {
		s := NewState("https://youtu.be/abc", OutputPodcast, "")

		Convey("初始状态", func() {
			So(s.Stage, ShouldEqual, StageInitialized)
			So(s.Voice, ShouldEqual, podcasttools.VoiceMixed)
			So(s.RunID, ShouldNotBeEmpty)
			So(s.IsTerminal(), ShouldBeFalse)
		})

		Convey("只能向前推进", func() {
			So(s.Advance(StageTranscriptFetched), ShouldBeNil)
			So(s.Advance(StageContentGenerated), ShouldBeNil)
			err := s.Advance(StageTranscriptFetched)
			So(errors.Is(err, ErrIllegalTransition), ShouldBeTrue)
			So(s.Stage, ShouldEqual, StageContentGenerated)
			So(s.Advance(StageContentGenerated), ShouldNotBeNil)
		})

		Convey("Advance 不能进入 Failed", func() {
			So(s.Advance(StageFailed), ShouldNotBeNil)
		})

		Convey("Failed 是终态", func() {
			s.Fail(KindGenerationFailed, errors.New("boom"))
			So(s.IsTerminal(), ShouldBeTrue)
			So(s.Succeeded(), ShouldBeFalse)
			So(s.FailureReason, ShouldEqual, "boom")
			So(s.CompletedAt, ShouldNotBeNil)
			So(s.Advance(StageAudioGenerated), ShouldNotBeNil)

			s.Fail(KindCancelled, nil)
			So(s.FailureKind, ShouldEqual, KindGenerationFailed)
		})

		Convey("podcast 在 ContentGenerated 不是终态", func() {
			So(s.Advance(StageContentGenerated), ShouldBeNil)
			So(s.IsTerminal(), ShouldBeFalse)
			So(s.Advance(StageAudioGenerated), ShouldBeNil)
			So(s.Succeeded(), ShouldBeTrue)
		})

		Convey("非 podcast 的取值在 ContentGenerated 结束", func() {
			for _, o := range []OutputType{"", "video"} {
				st := NewState("https://youtu.be/abc", o, "")
				So(st.Advance(StageContentGenerated), ShouldBeNil)
				So(st.IsTerminal(), ShouldBeTrue)
				So(o.IsPodcast(), ShouldBeFalse)
			}
		})

		Convey("summary 在 ContentGenerated 成功结束", func() {
			sum := NewState("https://youtu.be/abc", OutputSummary, podcasttools.VoiceMale)
			So(sum.Advance(StageContentGenerated), ShouldBeNil)
			So(sum.Succeeded(), ShouldBeTrue)
		})
	})
}

func TestParseOutputType(t *testing.T) {
	Convey("ParseOutputType", t, func() {
		o, err := ParseOutputType("")
		So(err, ShouldBeNil)
		So(o, ShouldEqual, OutputSummary)

		o, err = ParseOutputType(" Podcast ")
		So(err, ShouldBeNil)
		So(o, ShouldEqual, OutputPodcast)

		_, err = ParseOutputType("video")
		So(err, ShouldNotBeNil)
	})
}

func TestStageText(t *testing.T) {
	Convey("Stage 以名称序列化", t, func() {
		b, err := json.Marshal(struct {
			Stage Stage `json:"stage"`
		}{StageTitleGenerated})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"stage":"title_generated"}`)

		var st Stage
		So(st.UnmarshalText([]byte("audio_generated")), ShouldBeNil)
		So(st, ShouldEqual, StageAudioGenerated)
		So(st.UnmarshalText([]byte("nope")), ShouldNotBeNil)
	})
}
