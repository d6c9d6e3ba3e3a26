package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"tubecast/internal/pkg/ctxutil"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	return engine
}

func TestRequestID(t *testing.T) {
	Convey("RequestID", t, func() {
		engine := newEngine(RequestID())
		var fromCtx string
		engine.GET("/", func(c *gin.Context) {
			fromCtx, _ = ctxutil.GetRequestID(c.Request.Context())
			c.String(http.StatusOK, c.GetString("request_id"))
		})

		Convey("生成新的请求ID", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			rid := w.Header().Get(HeaderRequestID)
			So(rid, ShouldNotBeEmpty)
			So(w.Body.String(), ShouldEqual, rid)
			So(fromCtx, ShouldEqual, rid)
		})

		Convey("沿用客户端请求ID", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Header().Get(HeaderRequestID), ShouldEqual, "abc-123")
			So(fromCtx, ShouldEqual, "abc-123")
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("OPTIONS 预检直接返回 204", t, func() {
		engine := newEngine(CORS())
		engine.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api", nil))
		So(w.Code, ShouldEqual, http.StatusNoContent)
		So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
	})
}

func TestRateLimiter(t *testing.T) {
	Convey("RateLimiter", t, func() {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l := NewRateLimiter(2, 10*time.Second)
		l.now = func() time.Time { return now }

		Convey("窗口内超出次数被拒绝", func() {
			So(l.Allow("a"), ShouldBeTrue)
			So(l.Allow("a"), ShouldBeTrue)
			So(l.Allow("a"), ShouldBeFalse)
			So(l.Allow("b"), ShouldBeTrue)
		})

		Convey("时间推移后恢复", func() {
			So(l.Allow("a"), ShouldBeTrue)
			So(l.Allow("a"), ShouldBeTrue)
			now = now.Add(5 * time.Second)
			So(l.Allow("a"), ShouldBeTrue)
			So(l.Allow("a"), ShouldBeFalse)
		})

		Convey("闲置客户端被回收", func() {
			So(l.Allow("a"), ShouldBeTrue)
			now = now.Add(idleTTL + time.Minute)
			So(l.Allow("b"), ShouldBeTrue)
			So(l.clients, ShouldNotContainKey, "a")
		})

		Convey("中间件返回 429", func() {
			engine := newEngine(l.Handler())
			engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })
			codes := make([]int, 0, 3)
			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
				codes = append(codes, w.Code)
			}
			So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests})
		})
	})
}

func TestRecovery(t *testing.T) {
	Convey("panic 转为 500", t, func() {
		engine := newEngine(Recovery())
		engine.GET("/", func(c *gin.Context) { panic("boom") })
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(w.Body.String(), ShouldContainSubstring, "50001")
	})
}
