package main

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// printJSON 缩进输出响应数据
func printJSON(data []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		// 非 JSON 数据直接输出
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(out.String())
	return nil
}
