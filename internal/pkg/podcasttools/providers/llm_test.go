package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"tubecast/internal/ai/chain"
)

type stubChatModel struct {
	content string
	err     error
	input   []*schema.Message
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.content, nil), nil
}

func (s *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoProvider(t *testing.T) {
	Convey("EinoProvider.Invoke", t, func() {
		stub := &stubChatModel{content: "generated"}
		p := NewEinoProvider(chain.NewGenerateChainWithModel(stub))

		Convey("系统指令与用户内容都传给模型", func() {
			out, err := p.Invoke(context.Background(), "system", "user")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "generated")
			So(stub.input, ShouldHaveLength, 2)
			So(stub.input[0].Content, ShouldEqual, "system")
		})

		Convey("空响应返回错误", func() {
			stub.content = "  "
			_, err := p.Invoke(context.Background(), "system", "user")
			So(err, ShouldNotBeNil)
		})

		Convey("模型错误被包装返回", func() {
			stub.err = errors.New("quota")
			_, err := p.Invoke(context.Background(), "system", "user")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "quota")
		})
	})

	Convey("未设置 chain 时返回错误", t, func() {
		_, err := NewEinoProvider(nil).Invoke(context.Background(), "s", "u")
		So(err, ShouldNotBeNil)
	})
}
