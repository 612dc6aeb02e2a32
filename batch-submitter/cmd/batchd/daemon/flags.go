package daemon

const (
	homeFlag  = "home"
	forceFlag = "force"
)
