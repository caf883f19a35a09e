// internal/models/comic.go
package models

// ScriptRequest 漫画脚本生成请求
type ScriptRequest struct {
	Concept string `json:"concept"`         // 需要讲解的AI概念
	Model   string `json:"model,omitempty"` // 可选，默认使用配置中的脚本模型
}

// Panel 漫画中的一格
type Panel struct {
	PanelNumber      int    `json:"panelNumber"`
	SceneDescription string `json:"sceneDescription"`
	Dialogue         string `json:"dialogue"`
}

// ScriptResult 脚本生成结果
type ScriptResult struct {
	Panels      []Panel `json:"panels"`
	TotalPanels int     `json:"totalPanels"`
	RawText     string  `json:"rawText"` // 上游原始文本，成功时也保留用于排查
}

// ImageRequest 单格图片生成请求
type ImageRequest struct {
	Panel *Panel `json:"panel"`
	Style string `json:"style,omitempty"` // 风格名，对应 <style>-reference.<ext>
	Model string `json:"model,omitempty"`
}

// ImageResult 图片生成结果
type ImageResult struct {
	ImageData string `json:"imageData"` // base64
	MIMEType  string `json:"mimeType,omitempty"`
}

// NewScriptResult 由已解析的面板构造结果，并按 1..N 重新编号
func NewScriptResult(panels []Panel, rawText string) *ScriptResult {
	renumbered := make([]Panel, len(panels))
	for i, p := range panels {
		p.PanelNumber = i + 1
		renumbered[i] = p
	}
	return &ScriptResult{
		Panels:      renumbered,
		TotalPanels: len(renumbered),
		RawText:     rawText,
	}
}
