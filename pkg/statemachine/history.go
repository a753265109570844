package statemachine

// slot 历史记录中的一项。initial 为 true 时表示"初始状态"占位，
// 一旦发生过转换，它总是占据历史的第 0 位。
type slot struct {
	state   State
	initial bool
}

// history 线性的撤销/重做日志
type history struct {
	slots  []slot
	cursor int
}

// commit 记录一次新的转换，丢弃游标之后的重做分支
func (h *history) commit(s State) {
	if len(h.slots) == 0 {
		h.slots = append(h.slots, slot{initial: true})
	} else {
		h.slots = h.slots[:h.cursor+1]
	}
	h.slots = append(h.slots, slot{state: s})
	h.cursor = len(h.slots) - 1
}

func (h *history) canUndo() bool {
	return h.cursor-1 >= 0
}

func (h *history) canRedo() bool {
	return h.cursor+1 <= len(h.slots)-1
}

// undo 游标后退一步，返回新位置上的状态
func (h *history) undo(initial State) (State, bool) {
	if !h.canUndo() {
		return "", false
	}
	h.cursor--
	return h.at(h.cursor, initial), true
}

// redo 游标前进一步，返回新位置上的状态
func (h *history) redo(initial State) (State, bool) {
	if !h.canRedo() {
		return "", false
	}
	h.cursor++
	return h.at(h.cursor, initial), true
}

func (h *history) at(i int, initial State) State {
	if h.slots[i].initial {
		return initial
	}
	return h.slots[i].state
}

func (h *history) clear() {
	h.slots = nil
	h.cursor = 0
}

// states 返回解析后的历史快照，占位项显示为初始状态
func (h *history) states(initial State) []State {
	out := make([]State, len(h.slots))
	for i := range h.slots {
		out[i] = h.at(i, initial)
	}
	return out
}
