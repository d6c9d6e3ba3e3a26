package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	model "tubecast/internal/model/pipeline"
	"tubecast/internal/model/run"
	"tubecast/internal/pkg/podcasttools"
	runrepo "tubecast/internal/repository/run"
	pipelinesvc "tubecast/internal/service/pipeline"
)

type fakeRunner struct {
	outDir   string
	last     pipelinesvc.Request
	result   func(req pipelinesvc.Request) *model.State
	runs     []*run.Run
	disabled bool
}

func (f *fakeRunner) Run(ctx context.Context, req pipelinesvc.Request) *model.State {
	f.last = req
	return f.result(req)
}

func (f *fakeRunner) Get(ctx context.Context, id string) (*run.Run, error) {
	if f.disabled {
		return nil, pipelinesvc.ErrHistoryDisabled
	}
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, runrepo.ErrNotFound
}

func (f *fakeRunner) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error) {
	if f.disabled {
		return nil, 0, pipelinesvc.ErrHistoryDisabled
	}
	return f.runs, int64(len(f.runs)), nil
}

func (f *fakeRunner) OutputDir() string { return f.outDir }

func newRouter(r Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHandler(r)
	engine.POST("/api/v1/runs", h.CreateRun)
	engine.GET("/api/v1/runs", h.ListRuns)
	engine.GET("/api/v1/runs/:id", h.GetRun)
	engine.GET("/download/:filename", h.Download)
	return engine
}

func postJSON(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func succeeded(req pipelinesvc.Request) *model.State {
	st := model.NewState(req.URL, req.Output, req.Voice)
	st.VideoID = "abc"
	if req.Output == model.OutputPodcast {
		st.Stage = model.StageAudioGenerated
		st.Hosts = [2]string{"Michael", "David"}
		st.FormattedDialogue = "Michael: hi"
		st.ArtifactFilename = "episode.mp3"
		st.AudioPath = "/tmp/episode.mp3"
	} else {
		st.Stage = model.StageContentGenerated
		st.GeneratedText = "summary text"
	}
	st.Finish()
	return st
}

func TestCreateRun(t *testing.T) {
	Convey("POST /api/v1/runs", t, func() {
		runner := &fakeRunner{result: succeeded}
		engine := newRouter(runner)

		Convey("summary 成功", func() {
			w := postJSON(engine, "/api/v1/runs", map[string]string{"url": "https://youtu.be/abc"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(runner.last.Output, ShouldEqual, model.OutputSummary)
			So(runner.last.Voice, ShouldEqual, podcasttools.Voice(""))

			var resp struct {
				Code int       `json:"code"`
				Data RunResult `json:"data"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Data.Summary, ShouldEqual, "summary text")
			So(resp.Data.Stage, ShouldEqual, "content_generated")
			So(resp.Data.DownloadURL, ShouldBeEmpty)
		})

		Convey("podcast 返回下载地址", func() {
			w := postJSON(engine, "/api/v1/runs", map[string]string{"url": "https://youtu.be/abc", "output": "podcast", "voice": "male"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(runner.last.Voice, ShouldEqual, podcasttools.VoiceMale)

			var resp struct {
				Data RunResult `json:"data"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Data.Hosts, ShouldResemble, []string{"Michael", "David"})
			So(resp.Data.DownloadURL, ShouldEqual, "/download/episode.mp3")
		})

		Convey("缺少 url", func() {
			w := postJSON(engine, "/api/v1/runs", map[string]string{})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("非法 output/voice", func() {
			So(postJSON(engine, "/api/v1/runs", map[string]string{"url": "x", "output": "video"}).Code, ShouldEqual, http.StatusBadRequest)
			So(postJSON(engine, "/api/v1/runs", map[string]string{"url": "x", "voice": "robot"}).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("失败分类映射状态码", func() {
			cases := map[model.ErrorKind]int{
				model.KindInvalidRequest:        http.StatusBadRequest,
				model.KindInvalidURLFormat:      http.StatusBadRequest,
				model.KindTranscriptUnavailable: http.StatusUnprocessableEntity,
				model.KindGenerationFailed:      http.StatusBadGateway,
				model.KindAudioRenderFailed:     http.StatusBadGateway,
				model.KindInternal:              http.StatusInternalServerError,
			}
			for kind, status := range cases {
				kind := kind
				runner.result = func(req pipelinesvc.Request) *model.State {
					st := model.NewState(req.URL, req.Output, req.Voice)
					st.Fail(kind, nil)
					return st
				}
				w := postJSON(engine, "/api/v1/runs", map[string]string{"url": "x"})
				So(w.Code, ShouldEqual, status)

				var resp ErrorResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Message, ShouldEqual, string(kind))
				So(resp.Data, ShouldNotBeNil)
			}
		})
	})
}

func TestRunHistory(t *testing.T) {
	Convey("运行记录查询", t, func() {
		runner := &fakeRunner{runs: []*run.Run{{ID: "r1", Output: "summary"}}}
		engine := newRouter(runner)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		So(get("/api/v1/runs/r1").Code, ShouldEqual, http.StatusOK)
		So(get("/api/v1/runs/nope").Code, ShouldEqual, http.StatusNotFound)

		w := get("/api/v1/runs?page=1&page_size=10")
		So(w.Code, ShouldEqual, http.StatusOK)
		var resp struct {
			Data ListRunsResponseData `json:"data"`
		}
		So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
		So(resp.Data.Total, ShouldEqual, 1)
		So(resp.Data.PageSize, ShouldEqual, 10)

		runner.disabled = true
		So(get("/api/v1/runs").Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}

func TestDownload(t *testing.T) {
	Convey("GET /download/:filename", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "episode.mp3"), []byte("ID3"), 0o644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644), ShouldBeNil)
		engine := newRouter(&fakeRunner{outDir: dir})

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		w := get("/download/episode.mp3")
		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Body.String(), ShouldEqual, "ID3")
		So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "episode.mp3")

		So(get("/download/missing.mp3").Code, ShouldEqual, http.StatusNotFound)
		So(get("/download/notes.json").Code, ShouldEqual, http.StatusBadRequest)
		So(get("/download/..%5Csecret.txt").Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestValidArtifactName(t *testing.T) {
	tests := map[string]bool{
		"a.mp3":        true,
		"Title_1.TXT":  true,
		"":             false,
		".hidden.mp3":  false,
		"../a.mp3":     false,
		`..\a.mp3`:     false,
		"a.wav":        false,
	}
	for name, want := range tests {
		if got := validArtifactName(name); got != want {
			t.Errorf("validArtifactName(%q) = %v, want %v", name, got, want)
		}
	}
}
