// fsmctl 加载状态机定义并在终端中驱动它
package main

func main() {
	Execute()
}
