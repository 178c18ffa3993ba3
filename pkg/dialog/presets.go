package dialog

// Preset texts keyed by language. Every preset covers the same five
// languages.
var (
	confirmTitles = map[string]string{
		"en-US": "Confirm", "zh-CN": "确认", "zh-TW": "確認", "ja-JP": "確認", "ko-KR": "확인",
	}
	infoTitles = map[string]string{
		"en-US": "Information", "zh-CN": "信息", "zh-TW": "資訊", "ja-JP": "情報", "ko-KR": "정보",
	}
	warningTitles = map[string]string{
		"en-US": "Warning", "zh-CN": "警告", "zh-TW": "警告", "ja-JP": "警告", "ko-KR": "경고",
	}
	errorTitles = map[string]string{
		"en-US": "Error", "zh-CN": "错误", "zh-TW": "錯誤", "ja-JP": "エラー", "ko-KR": "오류",
	}
	questionTitles = map[string]string{
		"en-US": "Question", "zh-CN": "询问", "zh-TW": "詢問", "ja-JP": "質問", "ko-KR": "질문",
	}

	okTexts = map[string]string{
		"en-US": "OK", "zh-CN": "确定", "zh-TW": "確定", "ja-JP": "OK", "ko-KR": "확인",
	}
	cancelTexts = map[string]string{
		"en-US": "Cancel", "zh-CN": "取消", "zh-TW": "取消", "ja-JP": "キャンセル", "ko-KR": "취소",
	}
	yesTexts = map[string]string{
		"en-US": "Yes", "zh-CN": "是", "zh-TW": "是", "ja-JP": "はい", "ko-KR": "예",
	}
	noTexts = map[string]string{
		"en-US": "No", "zh-CN": "否", "zh-TW": "否", "ja-JP": "いいえ", "ko-KR": "아니요",
	}
)

// Button tags used by the presets
const (
	TagOK  = "ok"
	TagYes = "yes"
	TagNo  = "no"
)

// Confirm builds an OK/Cancel dialog
func Confirm(message, title string) Config {
	c := base(message, title, confirmTitles)
	c.ShowCancelButton = true
	c.LocalizedCancelTexts = clone(cancelTexts)
	c.Buttons = []Button{okButton()}
	return c
}

// Info builds a dialog with a single OK button
func Info(message, title string) Config {
	c := base(message, title, infoTitles)
	c.ShowCancelButton = false
	c.Buttons = []Button{okButton()}
	return c
}

// Warning is Info with a warning title
func Warning(message, title string) Config {
	c := Info(message, title)
	c.Title, c.LocalizedTitles = titles(title, warningTitles)
	return c
}

// Error is Info with an error title
func Error(message, title string) Config {
	c := Info(message, title)
	c.Title, c.LocalizedTitles = titles(title, errorTitles)
	return c
}

// YesNo builds a Yes/No question without a cancel button
func YesNo(message, title string) Config {
	c := base(message, title, questionTitles)
	c.ShowCancelButton = false
	c.Buttons = []Button{
		NewButton(yesTexts["en-US"], TagYes, ButtonPrimary, clone(yesTexts)),
		NewButton(noTexts["en-US"], TagNo, ButtonSecondary, clone(noTexts)),
	}
	return c
}

// YesNoCancel is YesNo with a cancel button
func YesNoCancel(message, title string) Config {
	c := YesNo(message, title)
	c.ShowCancelButton = true
	c.CancelButtonText = cancelTexts["en-US"]
	c.LocalizedCancelTexts = clone(cancelTexts)
	return c
}

// Presets maps preset names to their builders
var Presets = map[string]func(message, title string) Config{
	"confirm":     Confirm,
	"info":        Info,
	"warning":     Warning,
	"error":       Error,
	"yesno":       YesNo,
	"yesnocancel": YesNoCancel,
}

func base(message, title string, defaults map[string]string) Config {
	c := NewConfig()
	c.Title, c.LocalizedTitles = titles(title, defaults)
	c.ContentMode = ContentCenteredText
	c.ContentText = message
	return c
}

// titles returns the fallback title and per-language titles. A non-empty
// title replaces every language.
func titles(title string, defaults map[string]string) (string, map[string]string) {
	out := make(map[string]string, len(defaults))
	for lang, text := range defaults {
		if title != "" {
			out[lang] = title
		} else {
			out[lang] = text
		}
	}
	if title == "" {
		title = defaults["en-US"]
	}
	return title, out
}

func okButton() Button {
	return NewButton(okTexts["en-US"], TagOK, ButtonPrimary, clone(okTexts))
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
