package pipeline

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	httputil "tubecast/internal/pkg/http"
	"tubecast/internal/pkg/storage"
)

var downloadableExts = map[string]bool{".mp3": true, ".txt": true}

// Download 下载产物文件
// @Summary      下载产物
// @Description  只接受产物目录下的 .mp3/.txt 文件名，不接受路径
// @Tags         运行
// @Produce      octet-stream
// @Param        filename  path  string  true  "产物文件名"
// @Success      200
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /download/{filename} [get]
func (h *Handler) Download(c *gin.Context) {
	name := c.Param("filename")
	if !validArtifactName(name) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: httputil.CodeInvalidRequest, Message: "invalid filename"})
		return
	}

	path := filepath.Join(h.runner.OutputDir(), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: httputil.CodeNotFound, Message: "file not found"})
		return
	}

	c.Header("Content-Type", storage.ContentTypeFor(name))
	c.FileAttachment(path, name)
}

// validArtifactName 文件名必须是单段、非隐藏文件且扩展名可下载
func validArtifactName(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return downloadableExts[strings.ToLower(filepath.Ext(name))]
}
