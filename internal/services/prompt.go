// internal/services/prompt.go
package services

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Corphon/ComicProxy/internal/models"
)

// 脚本生成参数
const (
	scriptMaxOutputTokens = 8192
	scriptTemperature     = float32(1.0)
	scriptTopP            = float32(0.95)
)

// scriptSystemPrompt 脚本作者的风格契约
const scriptSystemPrompt = `**角色设定：**
你是一位科普漫画的首席脚本作家，专长是把枯燥、抽象的 AI 技术概念翻译成人人都能听懂的爆笑漫画脚本。

**核心任务：**
接收用户输入的一个 AI 概念（如"Embedding"、"Transformer"），创作一个多格漫画脚本（通常为 8-16 格，根据复杂程度定）。

**风格铁律（必须遵守）：**
1. 强制比喻：绝不能直接解释技术！必须找到一个极其生活化、甚至有点荒诞的实体比喻。
2. 固定人设：故事必须由【呆萌屏脸机器人】（代表死板的 AI 逻辑）和【暴躁吐槽猫】（代表常识人类）共同演绎。猫负责提问、质疑和吐槽，机器人负责用奇葩方式演示，最后出糗。
3. 语言风格：极度口语化，使用短句、感叹句，拒绝专业术语堆砌，除非马上用人话解释它。
4. 结构要求：脚本必须包含四个阶段：起因（猫提出离谱需求）-> 解释（机器人用奇葩比喻演示）-> 冲突/出糗（比喻带来的搞笑副作用）-> 总结（猫的精辟吐槽和一句话知识点）。

**输出格式（严格遵守）：**
请仅输出一个 JSON 数组，不要包含任何 Markdown 标记（如 ` + "```json" + `），不要包含任何开场白或结束语。
JSON 格式示例：
[
  {
    "panelNumber": 1,
    "sceneDescription": "猫丢给机器人一本厚书...",
    "dialogue": "猫：把这书读了..."
  },
  {
    "panelNumber": 2,
    "sceneDescription": "机器人...",
    "dialogue": "机器人：..."
  }
]`

// imageCast 图片提示词中的固定角色
const imageCast = "A cute robot and a grumpy cat"

// BuildScriptPrompt 拼接系统提示词与用户概念
func BuildScriptPrompt(concept string) string {
	return fmt.Sprintf("%s\n\n请为以下AI概念创作漫画脚本：%s", scriptSystemPrompt, strings.TrimSpace(concept))
}

// BuildImagePrompt 构建单格图片提示词
func BuildImagePrompt(panel models.Panel) string {
	return fmt.Sprintf(
		"Create a manga panel based on this style reference image. "+
			"Scene: %s. "+
			"Characters: %s. "+
			"Dialogue context: %s. "+
			"Make sure the visual style matches the reference image provided.",
		panel.SceneDescription, imageCast, panel.Dialogue)
}

// ScriptSchema 约束上游输出为面板数组
func ScriptSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"panelNumber":      {Type: genai.TypeInteger},
				"sceneDescription": {Type: genai.TypeString},
				"dialogue":         {Type: genai.TypeString},
			},
			Required: []string{"panelNumber", "sceneDescription", "dialogue"},
		},
	}
}

// scriptGenerationConfig JSON 模式 + schema
func scriptGenerationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens:  scriptMaxOutputTokens,
		Temperature:      genai.Ptr(scriptTemperature),
		TopP:             genai.Ptr(scriptTopP),
		ResponseMIMEType: "application/json",
		ResponseSchema:   ScriptSchema(),
	}
}

// imageGenerationConfig 同时允许文字，模型拒绝时可以给出理由
func imageGenerationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
}
