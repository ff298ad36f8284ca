package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "argument_category":
			return "引数の種類が不正です"
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "key_order":
			return "キーの順序が不正です"
		case "condition_failed":
			return "レコード条件を満たしていません"
		case "union_ambiguous":
			return "複数の分岐が異なる結果を返しました"
		case "no_branch":
			return "一致する分岐がありません"
		case "composition":
			return "関数を合成できません"
		case "invalid_default":
			return "既定値が型に適合しません"
		case "required_deletion":
			return "必須フィールドは削除できません"
		case "duplicate_key":
			return "キーが重複しています"
		case "too_short":
			return "要素数が不足しています"
		case "uniqueness":
			return "値が重複しています"
		}
	default: // "en"
		switch code {
		case "argument_category":
			return "invalid argument category"
		case "invalid_type":
			return "type mismatch"
		case "required":
			return "required field missing"
		case "unknown_key":
			return "unknown key"
		case "key_order":
			return "key out of declared order"
		case "condition_failed":
			return "record condition failed"
		case "union_ambiguous":
			return "ambiguous union: branches disagree"
		case "no_branch":
			return "no branch accepts the arguments"
		case "composition":
			return "incompatible composition"
		case "invalid_default":
			return "default does not satisfy the field type"
		case "required_deletion":
			return "required field cannot be deleted"
		case "duplicate_key":
			return "duplicate key"
		case "too_short":
			return "too few items"
		case "uniqueness":
			return "duplicate value"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
