package podcasttools

// HostsFor 根据音色偏好返回两位主持人的名字
func HostsFor(v Voice) (string, string) {
	switch v {
	case VoiceMale:
		return "Michael", "David"
	case VoiceFemale:
		return "Sarah", "Emily"
	default:
		return "Alex", "Jamie"
	}
}
