// internal/normalizer/script.go
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
	"github.com/Corphon/ComicProxy/internal/models"
)

// Strategy 脚本解析策略名
type Strategy string

const (
	StrategyStrict      Strategy = "strict"
	StrategyBracketScan Strategy = "bracket-scan"
)

// jsonArrayPattern 匹配第一个 '[' 到最后一个 ']'，用于剥离说明文字和代码块标记
var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

var (
	errNotArray   = errors.New("不是 JSON 数组")
	errNullPanel  = errors.New("面板为 null")
	errEmptyPanel = errors.New("面板缺少 sceneDescription 和 dialogue")
)

// ScriptParse 解析结果
type ScriptParse struct {
	Result   *models.ScriptResult
	Strategy Strategy
}

// 面板必须至少包含其中一个字段；panelNumber 不可信，不解码
const (
	sceneKey    = "sceneDescription"
	dialogueKey = "dialogue"
)

// looseString 接受字符串、数字、null，其余 JSON 值原样保留为紧凑文本
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return err
		}
		*s = looseString(buf.String())
	}
	return nil
}

// DirectText 读取响应的直接文本
func DirectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

// NormalizeScript 从上游响应中提取脚本
func NormalizeScript(resp *genai.GenerateContentResponse) (*models.ScriptResult, error) {
	parsed, err := ParseScript(DirectText(resp))
	if err != nil {
		return nil, err
	}
	return parsed.Result, nil
}

// ParseScript 先严格解析整段文本，失败后再扫描方括号片段
func ParseScript(text string) (*ScriptParse, error) {
	panels, strictErr := decodePanels(strings.TrimSpace(text))
	if strictErr == nil {
		return &ScriptParse{Result: models.NewScriptResult(panels, text), Strategy: StrategyStrict}, nil
	}

	if span := jsonArrayPattern.FindString(text); span != "" {
		panels, err := decodePanels(span)
		if err == nil {
			return &ScriptParse{Result: models.NewScriptResult(panels, text), Strategy: StrategyBracketScan}, nil
		}
		return nil, apperrors.NewMalformedScriptOutputError("生成的脚本格式错误", text, err)
	}

	return nil, apperrors.NewMalformedScriptOutputError("生成的脚本格式错误", text, strictErr)
}

func decodePanels(text string) ([]models.Panel, error) {
	if !strings.HasPrefix(text, "[") {
		return nil, errNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, fmt.Errorf("解析面板失败: %w", err)
	}

	panels := make([]models.Panel, len(elems))
	for i, elem := range elems {
		panel, err := decodePanel(elem)
		if err != nil {
			return nil, fmt.Errorf("第 %d 格: %w", i+1, err)
		}
		panels[i] = panel
	}
	return panels, nil
}

func decodePanel(elem json.RawMessage) (models.Panel, error) {
	if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
		return models.Panel{}, errNullPanel
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return models.Panel{}, fmt.Errorf("解析面板失败: %w", err)
	}

	scene, hasScene := fields[sceneKey]
	dialogue, hasDialogue := fields[dialogueKey]
	if !hasScene && !hasDialogue {
		return models.Panel{}, errEmptyPanel
	}

	var panel models.Panel
	if hasScene {
		var v looseString
		if err := json.Unmarshal(scene, &v); err != nil {
			return models.Panel{}, fmt.Errorf("解析 %s 失败: %w", sceneKey, err)
		}
		panel.SceneDescription = string(v)
	}
	if hasDialogue {
		var v looseString
		if err := json.Unmarshal(dialogue, &v); err != nil {
			return models.Panel{}, fmt.Errorf("解析 %s 失败: %w", dialogueKey, err)
		}
		panel.Dialogue = string(v)
	}
	return panel, nil
}
