package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVolcengineClient(t *testing.T) {
	Convey("Client.Synthesize", t, func() {
		var texts []string
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			var body struct {
				Audio   map[string]interface{} `json:"audio"`
				Request map[string]interface{} `json:"request"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			text, _ := body.Request["text"].(string)
			texts = append(texts, text)
			if strings.Contains(text, "fail") {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 3011, "message": "invalid text"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 3000,
				"data": base64.StdEncoding.EncodeToString([]byte("[" + body.Audio["voice_type"].(string) + "]")),
			})
		}))
		defer server.Close()

		client, err := NewClient(Config{APIURL: server.URL, AccessToken: "tok", MaxChunkBytes: 12})
		So(err, ShouldBeNil)

		Convey("分段请求并按顺序拼接", func() {
			audio, err := client.Synthesize(context.Background(), "first line\nsecond line", "voice_a")
			So(err, ShouldBeNil)
			So(auth, ShouldEqual, "Bearer; tok")
			So(texts, ShouldResemble, []string{"first line", "second line"})
			So(string(audio), ShouldEqual, "[voice_a][voice_a]")
		})

		Convey("空音色使用默认音色", func() {
			audio, err := client.Synthesize(context.Background(), "hi", "")
			So(err, ShouldBeNil)
			So(string(audio), ShouldEqual, "["+defaultVoiceType+"]")
		})

		Convey("业务错误码返回错误", func() {
			_, err := client.Synthesize(context.Background(), "fail", "v")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid text")
		})
	})

	Convey("缺少 token 时拒绝创建", t, func() {
		_, err := NewClient(Config{})
		So(err, ShouldNotBeNil)
	})
}

func TestElevenLabsClient(t *testing.T) {
	Convey("ElevenLabsClient.Synthesize", t, func() {
		var gotPath, gotKey string
		var gotReq elevenLabsRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("xi-api-key")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotReq)
			if strings.HasSuffix(r.URL.Path, "/bad") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("ID3"))
		}))
		defer server.Close()

		client, err := NewElevenLabsClient(ElevenLabsConfig{APIURL: server.URL, APIKey: "xi"})
		So(err, ShouldBeNil)

		Convey("请求路径包含 voice id 并带上默认参数", func() {
			audio, err := client.Synthesize(context.Background(), "Hello "+ElevenLabsBreakTag+" there", "voice1")
			So(err, ShouldBeNil)
			So(string(audio), ShouldEqual, "ID3")
			So(gotPath, ShouldEqual, "/voice1")
			So(gotKey, ShouldEqual, "xi")
			So(gotReq.ModelID, ShouldEqual, defaultElevenLabsModel)
			So(gotReq.VoiceSettings.Stability, ShouldEqual, 0.5)
			So(gotReq.Text, ShouldContainSubstring, ElevenLabsBreakTag)
		})

		Convey("非 200 返回错误", func() {
			_, err := client.Synthesize(context.Background(), "x", "bad")
			So(err, ShouldNotBeNil)
		})

		Convey("缺少 voice id", func() {
			_, err := client.Synthesize(context.Background(), "x", "")
			So(err, ShouldNotBeNil)
		})
	})
}
