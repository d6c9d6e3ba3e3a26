package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.2">Hello &amp;amp; welcome</text>
<text start="1.7" dur="2.0">it&amp;#39;s a
test</text>
</transcript>`

const sampleFormat3 = `<?xml version="1.0" encoding="utf-8" ?><timedtext format="3"><body>
<p t="1000" d="1500">first line</p>
<p t="2500" d="900"><s>second</s><s> line</s></p>
</body></timedtext>`

func watchPage(baseURL string) string {
	return fmt.Sprintf(`<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},`+
		`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
		`{"baseUrl":"%s/asr?fmt=srv3\u0026lang=en","languageCode":"en","kind":"asr","name":{"simpleText":"English [auto]"}},`+
		`{"baseUrl":"%s/manual?fmt=srv1\u0026lang=en","languageCode":"en-US","name":{"simpleText":"English (a]b)"}}`+
		`]}}};</script></html>`, baseURL, baseURL)
}

func TestTimedTextClient(t *testing.T) {
	Convey("TimedTextClient.GetCaptions", t, func() {
		var server *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("v") {
			case "ok":
				_, _ = fmt.Fprint(w, watchPage(server.URL))
			case "private":
				_, _ = fmt.Fprint(w, `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"private"}}`)
			case "gone":
				_, _ = fmt.Fprint(w, `{"playabilityStatus":{"status":"ERROR"}}`)
			case "nocaps":
				_, _ = fmt.Fprint(w, `{"playabilityStatus":{"status":"OK"}}`)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/manual", func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, sampleTimedText)
		})
		mux.HandleFunc("/asr", func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, sampleFormat3)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		client := NewTimedTextClient(TimedTextConfig{WatchURL: server.URL + "/watch"})
		ctx := context.Background()

		Convey("优先选择人工字幕并解码实体", func() {
			captions, err := client.GetCaptions(ctx, "ok")
			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 2)
			So(captions[0].Text, ShouldEqual, "Hello & welcome")
			So(captions[0].Start, ShouldEqual, 0.5)
			So(captions[1].Text, ShouldEqual, "it's a test")
		})

		Convey("私有视频返回 ErrAccessRestricted", func() {
			_, err := client.GetCaptions(ctx, "private")
			So(err, ShouldEqual, ErrAccessRestricted)
		})

		Convey("播放状态 ERROR 返回 ErrVideoNotFound", func() {
			_, err := client.GetCaptions(ctx, "gone")
			So(err, ShouldEqual, ErrVideoNotFound)
		})

		Convey("页面 404 返回 ErrVideoNotFound", func() {
			_, err := client.GetCaptions(ctx, "missing")
			So(err, ShouldEqual, ErrVideoNotFound)
		})

		Convey("页面没有 captionTracks 返回 ErrNoCaptions", func() {
			_, err := client.GetCaptions(ctx, "nocaps")
			So(err, ShouldEqual, ErrNoCaptions)
		})
	})
}

func TestParseTimedTextFormat3(t *testing.T) {
	Convey("format 3 的毫秒时间转换为秒", t, func() {
		captions, err := parseTimedText([]byte(sampleFormat3))
		So(err, ShouldBeNil)
		So(captions, ShouldHaveLength, 2)
		So(captions[0].Start, ShouldEqual, 1.0)
		So(captions[0].Duration, ShouldEqual, 1.5)
		So(captions[1].Text, ShouldEqual, "second line")
	})
}

func TestPickTrack(t *testing.T) {
	Convey("pickTrack", t, func() {
		tracks := []captionTrack{
			{LanguageCode: "de", BaseURL: "de"},
			{LanguageCode: "en", Kind: "asr", BaseURL: "en-asr"},
		}

		Convey("同语言只有自动字幕时使用自动字幕", func() {
			tr, ok := pickTrack(tracks, []string{"en"})
			So(ok, ShouldBeTrue)
			So(tr.BaseURL, ShouldEqual, "en-asr")
		})

		Convey("没有匹配语言时退回第一条", func() {
			tr, ok := pickTrack(tracks, []string{"fr"})
			So(ok, ShouldBeTrue)
			So(tr.BaseURL, ShouldEqual, "de")
		})

		Convey("空列表", func() {
			_, ok := pickTrack(nil, []string{"en"})
			So(ok, ShouldBeFalse)
		})
	})
}
