package config

import (
	"bufio"
	"fmt"
	"os"
)

// DefaultPeerAddress 地址文件缺失时写入的回环地址
const DefaultPeerAddress = "127.0.0.1"

// LoadPeerAddress 读取地址文件中的第一个单词作为服务器 IP；
// 文件不存在或为空时写入默认回环地址并返回它
func LoadPeerAddress(path string) (string, error) {
	if f, err := os.Open(path); err == nil {
		sc := bufio.NewScanner(f)
		sc.Split(bufio.ScanWords)
		ok := sc.Scan()
		addr := sc.Text()
		f.Close()
		if ok && addr != "" {
			return addr, nil
		}
	}

	if err := os.WriteFile(path, []byte(DefaultPeerAddress), 0o644); err != nil {
		return DefaultPeerAddress, fmt.Errorf("write peer address file: %w", err)
	}
	return DefaultPeerAddress, nil
}
