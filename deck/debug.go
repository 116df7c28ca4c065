package deck

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将组装结果输出为 JSON，便于调试坐标与换行。
func WriteDebugJSON(scene *Scene, path string) error {
	if scene == nil {
		return nil
	}
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
