// internal/normalizer/image.go
package normalizer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
	"github.com/Corphon/ComicProxy/internal/models"
)

const defaultImageMIMEType = "image/png"

// dataURIPattern 匹配文本中内嵌的 base64 图片
var dataURIPattern = regexp.MustCompile(`data:(image/[A-Za-z0-9.+-]+);base64,([A-Za-z0-9+/=\r\n]+)`)

// ImageShape 上游图片响应的已知形态
type ImageShape interface {
	imageShape()
}

// NoCandidates 没有候选或第一个候选为空
type NoCandidates struct {
	Reason string
}

// InlineImage part 中携带的二进制图片
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// DecodedImage 已解码的图片对象，传输前需重新编码
type DecodedImage struct {
	Image    image.Image
	MIMEType string // 来源格式
}

// Unrecognized 没有可识别的图片，Text 为模型给出的文字说明
type Unrecognized struct {
	Text string
}

func (NoCandidates) imageShape() {}
func (InlineImage) imageShape()  {}
func (DecodedImage) imageShape() {}
func (Unrecognized) imageShape() {}

// ClassifyImage 将上游响应归类为一种已知形态
func ClassifyImage(resp *genai.GenerateContentResponse) ImageShape {
	if resp == nil || len(resp.Candidates) == 0 {
		return NoCandidates{Reason: blockReason(resp)}
	}

	first := resp.Candidates[0]
	if first == nil || first.Content == nil || len(first.Content.Parts) == 0 {
		reason := blockReason(resp)
		if reason == "" && first != nil && first.FinishReason != "" {
			reason = "finish reason: " + string(first.FinishReason)
		}
		return NoCandidates{Reason: reason}
	}

	parts := first.Content.Parts
	for _, part := range parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = defaultImageMIMEType
			}
			return InlineImage{Data: part.InlineData.Data, MIMEType: mimeType}
		}
	}

	for _, part := range parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		if img, mimeType, ok := decodeDataURI(part.Text); ok {
			return DecodedImage{Image: img, MIMEType: mimeType}
		}
	}

	text := strings.TrimSpace(DirectText(resp))
	if text == "" && first.FinishReason != "" {
		text = "finish reason: " + string(first.FinishReason)
	}
	return Unrecognized{Text: text}
}

// NormalizeImage 提取图片并编码为 base64
func NormalizeImage(resp *genai.GenerateContentResponse) (*models.ImageResult, error) {
	switch shape := ClassifyImage(resp).(type) {
	case InlineImage:
		return &models.ImageResult{
			ImageData: base64.StdEncoding.EncodeToString(shape.Data),
			MIMEType:  shape.MIMEType,
		}, nil
	case DecodedImage:
		var buf bytes.Buffer
		if err := png.Encode(&buf, shape.Image); err != nil {
			return nil, apperrors.NewNoImageProducedError("图片重新编码失败", err)
		}
		return &models.ImageResult{
			ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
			MIMEType:  defaultImageMIMEType,
		}, nil
	case NoCandidates:
		return nil, noImageError(shape.Reason)
	case Unrecognized:
		return nil, noImageError(shape.Text)
	default:
		return nil, apperrors.NewNoImageProducedError(fmt.Sprintf("无法识别的响应形态: %T", shape), nil)
	}
}

func noImageError(reason string) error {
	if reason == "" {
		reason = "未知错误"
	}
	return apperrors.NewNoImageProducedError("生成失败，模型未返回图片。模型回复: "+reason, nil)
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return ""
	}
	fb := resp.PromptFeedback
	switch {
	case fb.BlockReasonMessage != "":
		return fb.BlockReasonMessage
	case fb.BlockReason != "":
		return "blocked: " + string(fb.BlockReason)
	}
	return ""
}

func decodeDataURI(text string) (image.Image, string, bool) {
	m := dataURIPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, "", false
	}

	payload := strings.NewReplacer("\r", "", "\n", "").Replace(m[2])
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false
	}
	return img, m[1], true
}
