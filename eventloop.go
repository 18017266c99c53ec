//go:build linux

package httpcore

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// EventLoop is the single-threaded readiness selector (spec §4.8, C8). It
// owns the listening socket and the epoll instance; all other components
// (the two WorkerPools, the ConnectionRegistry, the IdleReaper, the root
// Router) are handed in already constructed. golang.org/x/sys/unix is
// promoted here from the teacher's transitive dependency (pulled in by
// other packages without being imported directly) to a direct one, since
// no pack example implements non-blocking socket I/O itself.
type EventLoop struct {
	listenFD int
	epollFD  int

	readPool   *WorkerPool
	writePool  *WorkerPool
	bufferPool *BufferPool
	registry   *ConnectionRegistry
	reaper     *IdleReaper
	router     *Router
	codec      JSONCodec
	multipart  MultipartParser
	logger     Logger
	metrics    Metrics
	connStats  *connStats

	selectorTimeout time.Duration
	notFound        HandlerFunc

	stopCh  chan struct{}
	stopped chan struct{}
}

// EventLoopConfig bundles the collaborators Server wires together; kept
// separate from the constructor signature so adding a field never breaks
// callers.
type EventLoopConfig struct {
	Port            int
	SelectorTimeout time.Duration
	ReadPool        *WorkerPool
	WritePool       *WorkerPool
	BufferPool      *BufferPool
	Registry        *ConnectionRegistry
	Reaper          *IdleReaper
	Router          *Router
	Codec           JSONCodec
	Multipart       MultipartParser
	Logger          Logger
	Metrics         Metrics
	ConnStats       *connStats
	NotFound        HandlerFunc
}

// newEventLoop creates and binds the listening socket, sets it
// non-blocking, and registers it with a fresh epoll instance.
func newEventLoop(cfg EventLoopConfig) (*EventLoop, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, err
	}
	addr := unix.SockaddrInet4{Port: cfg.Port}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, err
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		unix.Close(epfd)
		unix.Close(fd)
		return nil, err
	}

	return &EventLoop{
		listenFD:        fd,
		epollFD:         epfd,
		readPool:        cfg.ReadPool,
		writePool:       cfg.WritePool,
		bufferPool:      cfg.BufferPool,
		registry:        cfg.Registry,
		reaper:          cfg.Reaper,
		router:          cfg.Router,
		codec:           cfg.Codec,
		multipart:       cfg.Multipart,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		connStats:       cfg.ConnStats,
		selectorTimeout: cfg.SelectorTimeout,
		notFound:        cfg.NotFound,
		stopCh:          make(chan struct{}),
		stopped:         make(chan struct{}),
	}, nil
}

// Run blocks, servicing readiness events until Stop is called (spec §4.8).
func (el *EventLoop) Run() error {
	defer close(el.stopped)
	events := make([]unix.EpollEvent, 128)
	timeoutMillis := int(el.selectorTimeout / time.Millisecond)

	for {
		select {
		case <-el.stopCh:
			return nil
		default:
		}

		n, err := unix.EpollWait(el.epollFD, events, timeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			el.reaper.Sweep()
			continue
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == el.listenFD {
				el.acceptAll()
				continue
			}
			el.onReadable(fd)
		}
	}
}

// Stop signals Run to return after its current iteration and waits for it
// to exit.
func (el *EventLoop) Stop() {
	close(el.stopCh)
	<-el.stopped
	unix.Close(el.epollFD)
	unix.Close(el.listenFD)
}

func (el *EventLoop) acceptAll() {
	for {
		connFD, sa, err := unix.Accept4(el.listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			el.logger.Warn("accept failed", "error", err.Error())
			return
		}

		ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLONESHOT, Fd: int32(connFD)}
		if err := unix.EpollCtl(el.epollFD, unix.EPOLL_CTL_ADD, connFD, &ev); err != nil {
			unix.Close(connFD)
			continue
		}

		buf := el.bufferPool.Acquire()
		nc := newRawConn(connFD, sa)
		conn := newConnection(connFD, nc, buf)
		el.registry.Register(conn)
	}
}

// onReadable clears read interest (EPOLLONESHOT already did, implicitly)
// and submits a read task; rejection re-arms interest and logs
// backpressure (spec §4.8 step 2, §5 "Backpressure"). tryAcquire guards the
// same single-owner invariant EPOLLONESHOT already enforces by construction
// (only one readiness event per fd is ever delivered before a rearm); it is
// belt-and-suspenders against that invariant being violated by a future
// change to the arming logic (spec §5 "at most one worker owns the
// connection").
func (el *EventLoop) onReadable(fd int) {
	conn, ok := el.registry.Get(fd)
	if !ok {
		return
	}
	if !conn.tryAcquire() {
		el.logger.Warn("readiness event for connection already owned by a worker", "connection", conn.id)
		return
	}
	el.readPool.Submit(func() {
		el.doRead(conn)
	}, func() {
		el.logger.Warn("read pool saturated, deferring", "connection", conn.id)
		conn.release()
		el.rearm(conn, unix.EPOLLIN)
	})
}

func (el *EventLoop) doRead(conn *Connection) {
	if conn.IsClosed() {
		conn.release()
		return
	}
	chunk := make([]byte, 64*1024)
	for {
		n, err := unix.Read(conn.fd, chunk)
		if n > 0 {
			conn.accumulator.Write(chunk[:n])
		}
		if err != nil {
			if err == unix.EAGAIN {
				break
			}
			conn.release()
			el.closeConn(conn)
			return
		}
		if n == 0 {
			conn.release()
			el.closeConn(conn)
			return
		}
		if n < len(chunk) {
			break
		}
	}
	conn.touch()

	complete, perr := requestComplete(conn.accumulator.Bytes())
	if perr != nil {
		el.recordFailure(conn)
		conn.release()
		el.closeConn(conn)
		return
	}
	if !complete {
		conn.release()
		el.rearm(conn, unix.EPOLLIN)
		return
	}

	el.writePool.Submit(func() {
		el.process(conn)
	}, func() {
		el.logger.Warn("write pool saturated", "connection", conn.id)
		conn.release()
		el.rearm(conn, unix.EPOLLIN)
	})
}

func (el *EventLoop) process(conn *Connection) {
	timer := el.metrics.StartRequest()
	req, err := parseRequest(conn.accumulator.Bytes(), conn)
	if err != nil {
		el.recordFailure(conn)
		res := newResponse(conn, el.codec, el.logger)
		res.SetStatus(400).WriteText(err.Error())
		_ = res.Send()
		timer.EndRequest("", 400)
		conn.release()
		el.closeConn(conn)
		return
	}

	res := newResponse(conn, el.codec, el.logger)
	func() {
		defer func() {
			if r := recover(); r != nil {
				if !res.sent {
					res.SetStatus(500).WriteText("internal server error")
					_ = res.Send()
				}
				herr := &HandlerError{Path: req.path, Err: fmt.Errorf("%v", r)}
				el.logger.Error("handler panicked", herr, "connection", conn.id)
			}
		}()
		el.router.Apply(req, res, el.notFound)
	}()
	timer.EndRequest(req.path, res.status)

	if el.connStats != nil {
		el.connStats.Reset(conn.remoteAddr)
	}

	closeAfter := !conn.keepAlive || strings.EqualFold(req.Header("Connection"), "close")
	conn.accumulator.Reset()
	conn.release()
	if closeAfter {
		el.closeConn(conn)
		return
	}
	el.rearm(conn, unix.EPOLLIN)
}

// recordFailure bumps the peer's protocol-failure count when framing or the
// start line/headers cannot be parsed (spec §7, per-peer failure tracking).
func (el *EventLoop) recordFailure(conn *Connection) {
	if el.connStats == nil {
		return
	}
	count := el.connStats.RecordFailure(conn.remoteAddr)
	if count > 1 {
		el.logger.Warn("repeated malformed requests from peer", "connection", conn.id, "remote", conn.remoteAddr, "failures", count)
	}
}

func (el *EventLoop) rearm(conn *Connection, events uint32) {
	if conn.IsClosed() {
		return
	}
	ev := unix.EpollEvent{Events: events | unix.EPOLLONESHOT, Fd: int32(conn.fd)}
	_ = unix.EpollCtl(el.epollFD, unix.EPOLL_CTL_MOD, conn.fd, &ev)
}

func (el *EventLoop) closeConn(conn *Connection) {
	_ = unix.EpollCtl(el.epollFD, unix.EPOLL_CTL_DEL, conn.fd, nil)
	_ = conn.Close()
	el.registry.Remove(conn.fd)
	el.bufferPool.Release(conn.accumulator)
}
