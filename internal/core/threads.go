package core

// Thread is a top-level comment with its direct replies, oldest reply first.
type Thread struct {
	Comment Comment
	Replies []Comment
}

// Threads groups comments one level deep. Top-level comments keep their
// input order. Replies to a missing comment or to another reply are dropped.
func Threads(comments []Comment) []Thread {
	index := make(map[string]int)
	var threads []Thread
	for _, c := range comments {
		if c.IsReply() {
			continue
		}
		if c.ID != "" {
			if _, dup := index[c.ID]; dup {
				continue
			}
			index[c.ID] = len(threads)
		}
		threads = append(threads, Thread{Comment: c})
	}
	// collections are newest first; replies read oldest first
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if !c.IsReply() {
			continue
		}
		pos, ok := index[c.ParentID]
		if !ok {
			continue
		}
		threads[pos].Replies = append(threads[pos].Replies, c)
	}
	return threads
}
