package upload

// Strategy tries to find the uploaded URL in a decoded JSON response.
type Strategy func(resp map[string]any) (string, bool)

// DefaultStrategies cover the response shapes common image hosts use, most
// specific first.
var DefaultStrategies = []Strategy{
	FieldURL,
	FieldData,
	NestedDataURL,
	FirstResult,
	FieldLink,
}

// ExtractURL returns the first URL any strategy finds.
func ExtractURL(resp map[string]any, strategies ...Strategy) (string, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	for _, s := range strategies {
		if u, ok := s(resp); ok {
			return u, nil
		}
	}
	return "", ErrNoURL
}

// FieldURL reads {"url": "..."}.
func FieldURL(resp map[string]any) (string, bool) {
	return str(resp["url"])
}

// FieldData reads {"data": "..."}.
func FieldData(resp map[string]any) (string, bool) {
	return str(resp["data"])
}

// NestedDataURL reads {"data": {"url": "..."}}.
func NestedDataURL(resp map[string]any) (string, bool) {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return "", false
	}
	return str(data["url"])
}

// FirstResult reads {"result": ["...", ...]}.
func FirstResult(resp map[string]any) (string, bool) {
	list, ok := resp["result"].([]any)
	if !ok || len(list) == 0 {
		return "", false
	}
	return str(list[0])
}

// FieldLink reads {"link": "..."}.
func FieldLink(resp map[string]any) (string, bool) {
	return str(resp["link"])
}

func str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
