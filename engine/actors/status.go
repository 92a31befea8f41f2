package actors

import (
	"sync"
)

var terminateChan chan struct{}

func SetTerminateChan(term chan struct{}) {
	terminateChan = term
}

func GetTerminateChan() chan struct{} {
	return terminateChan
}

var wg = &sync.WaitGroup{}

func GetWaitGroup() *sync.WaitGroup {
	return wg
}
