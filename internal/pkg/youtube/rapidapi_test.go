package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRapidAPIClient(t *testing.T) {
	Convey("RapidAPIClient.GetCaptions", t, func() {
		var gotKey, gotHost, gotLang string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-RapidAPI-Key")
			gotHost = r.Header.Get("X-RapidAPI-Host")
			gotLang = r.URL.Query().Get("lang")
			switch r.URL.Query().Get("videoId") {
			case "wrapped":
				_, _ = fmt.Fprint(w, `{"success":true,"transcript":[{"text":"b","offset":"2.5","duration":"1"},{"text":"a &amp; c","offset":0.1,"duration":2}]}`)
			case "array":
				_, _ = fmt.Fprint(w, `[{"text":"x","start":1,"duration":1}]`)
			case "empty":
				_, _ = fmt.Fprint(w, `{"success":false,"error":"no transcript"}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client, err := NewRapidAPIClient(RapidAPIConfig{APIKey: "secret", BaseURL: server.URL})
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("带上鉴权头并解析字符串时间", func() {
			captions, err := client.GetCaptions(ctx, "wrapped")
			So(err, ShouldBeNil)
			So(gotKey, ShouldEqual, "secret")
			So(gotHost, ShouldEqual, defaultRapidAPIHost)
			So(gotLang, ShouldEqual, "en")
			So(captions, ShouldHaveLength, 2)
			So(captions[0].Start, ShouldEqual, 2.5)
			So(captions[1].Text, ShouldEqual, "a & c")
		})

		Convey("直接返回数组", func() {
			captions, err := client.GetCaptions(ctx, "array")
			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 1)
			So(captions[0].Start, ShouldEqual, 1.0)
		})

		Convey("success=false 归类为无字幕", func() {
			_, err := client.GetCaptions(ctx, "empty")
			So(err, ShouldWrap, ErrNoCaptions)
		})

		Convey("404 归类为视频不存在", func() {
			_, err := client.GetCaptions(ctx, "missing")
			So(err, ShouldEqual, ErrVideoNotFound)
		})
	})

	Convey("缺少 key 时拒绝创建", t, func() {
		_, err := NewRapidAPIClient(RapidAPIConfig{})
		So(err, ShouldNotBeNil)
	})
}
