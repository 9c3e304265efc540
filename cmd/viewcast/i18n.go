// Package main provides localization for the viewcast CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Record live web pages as MP4 videos.": "ライブWebページをMP4動画として記録します。",

		// Record command
		"Record a live web page as MP4 video.": "ライブWebページをMP4動画として記録",

		// Version command
		"Show version information.": "バージョン情報を表示",
		"viewcast version %s":       "viewcast バージョン %s",

		// Flags
		"URL of the page to record.":                        "記録するページのURL",
		"Output MP4 file path.":                             "出力MP4ファイルパス",
		"YAML configuration file (flags override its values).": "YAML設定ファイル（フラグが値を上書き）",
		"Frames per second (default: 30).":                  "フレームレート（デフォルト: 30）",
		"Capture width in pixels (default: 1280).":          "キャプチャ幅（ピクセル、デフォルト: 1280）",
		"Capture height in pixels (default: 720).":          "キャプチャ高さ（ピクセル、デフォルト: 720）",
		"Recording duration in milliseconds (default: 10000).": "記録時間（ミリ秒、デフォルト: 10000）",
		"Video quality (CRF 0-51, lower is better).":        "動画品質（CRF 0-51、低いほど高品質）",
		"Target bitrate in kbps (0 leaves it to CRF).":      "目標ビットレート（kbps、0はCRF任せ）",
		"Run browser in non-headless mode.":                 "ブラウザを非ヘッドレスモードで実行",
		"Custom User-Agent string.":                         "カスタムUser-Agent文字列",
		"Ignore HTTPS certificate errors.":                  "HTTPS証明書エラーを無視",
		"HTTP proxy server (e.g., http://proxy:8080).":      "HTTPプロキシサーバー（例: http://proxy:8080）",
		"Log level (debug, info, warn, error).":             "ログレベル（debug, info, warn, error）",
		"Suppress all log output.":                          "全てのログ出力を抑制",

		// Runtime messages
		"Opening %s...":                 "%s を開いています...",
		"Recording %s for %s...":        "%s を %s 間記録中...",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Output saved to %s":            "出力を %s に保存しました",
		"recording produced no output":  "記録は出力を生成しませんでした",
	})
}
