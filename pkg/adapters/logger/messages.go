package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recorder session
		"Recording started: %dx%d at %d fps": "録画を開始しました: %dx%d、%d fps",
		"Recording stopped":                  "録画を停止しました",

		// Scheduler component
		"Frame timer started: %s interval":        "フレームタイマーを開始: 間隔 %s",
		"Frame timer stopped, finalizing":         "フレームタイマーを停止、ファイナライズ中",
		"Rasterization failed, skipping tick: %s": "ラスタライズに失敗、このティックをスキップ: %s",

		// Encoder component
		"Writer session opened: %dx%d at %d fps":    "ライターセッションを開始: %dx%d、%d fps",
		"Failed to open writer session: %s":         "ライターセッションの開始に失敗しました: %s",
		"Dropping frame: worker queue full":         "フレームを破棄: ワーカーキューが満杯",
		"Dropping frame: no output path configured": "フレームを破棄: 出力パスが未設定",
		"Dropping frame: zero target size":          "フレームを破棄: 出力サイズがゼロ",
		"Dropping frame: encoder not ready":         "フレームを破棄: エンコーダが未準備",
		"Dropping frame: %s":                        "フレームを破棄: %s",
		"Failed to write frame at %.3fs: %s":        "%.3f 秒のフレーム書き込みに失敗しました: %s",
		"Finalization failed: %s":                   "ファイナライズに失敗しました: %s",
		"Container finalized after %d frames in %s": "コンテナをファイナライズしました: %d フレーム、%s",

		// ffmpeg muxer
		"Starting ffmpeg: %s":        "ffmpeg を起動中: %s",
		"ffmpeg finished: %d frames": "ffmpeg が完了しました: %d フレーム",
		"Muxed MP4: %d bytes":        "MP4 を多重化しました: %d バイト",

		// Chrome surface
		"Launching Chrome at %s": "Chrome を起動中: %s",
		"Navigating to %s":       "%s へ移動中",
		"Chrome closed":          "Chrome を閉じました",
	})
}
