package repository

import "eduassist-go/internal/model"

// StripMedia 返回去掉内嵌媒体的副本：清空 image 和附件的 data/uri，
// 保留附件条目本身，并在原本带媒体的消息文本后追加 marker。
func StripMedia(messages []model.Message, marker string) []model.Message {
	out := model.CloneMessages(messages)
	for i := range out {
		if !out[i].HasMedia() {
			continue
		}
		out[i].Image = ""
		for j := range out[i].Attachments {
			out[i].Attachments[j].Data = ""
			out[i].Attachments[j].URI = ""
		}
		if marker != "" {
			out[i].Text += "\n\n" + marker
		}
	}
	return out
}
