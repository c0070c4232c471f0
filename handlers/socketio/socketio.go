package socketio

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"

	"slidesync/core"
	"slidesync/room"
)

// Adapter exposes the Socket.IO server as the coordinator's Broadcaster.
// Every socket is implicitly a member of the room named after its own id,
// so per-connection sends reuse the room path.
type Adapter struct {
	srv *socketio.Server
}

func (a *Adapter) ToRoom(roomID string, event string, payload any) {
	if err := a.srv.To(socketio.Room(roomID)).Emit(event, payload); err != nil {
		logrus.WithError(err).WithField("room", roomID).Warn("Room broadcast failed")
	}
}

func (a *Adapter) ToConn(connID string, event string, payload any) {
	if err := a.srv.To(socketio.Room(connID)).Emit(event, payload); err != nil {
		logrus.WithError(err).WithField("conn_id", connID).Warn("Connection send failed")
	}
}

// Setup builds the Socket.IO server and binds the presentation event
// protocol to a coordinator produced by the build callback. The callback
// receives the Broadcaster so the coordinator can be wired back to this
// server.
func Setup(build func(b room.Broadcaster) *room.Coordinator) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)
	coord := build(&Adapter{srv: srv})

	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		me := string(socket.Id())
		logrus.WithField("conn_id", me).Info("Client connected")

		socket.On("join", func(datas ...any) {
			var payload JoinPayload
			if len(datas) > 0 {
				if err := decodePayload(datas[0], &payload); err != nil {
					rejectEvent(socket, "join", err)
					return
				}
			}

			p, err := coord.Join(context.Background(), me, payload.Nickname, payload.PresentationID)
			if err != nil {
				rejectEvent(socket, "join", err)
				return
			}
			// The coordinator's room broadcast ran before this socket was
			// in the transport room; join it now and hand the snapshot to
			// the joiner directly.
			socket.Join(socketio.Room(p.ID))
			if err := socket.Emit(room.EventUpdate, p); err != nil {
				logrus.WithError(err).WithField("conn_id", me).Warn("Snapshot send failed")
			}
		})

		socket.On("addSlide", func(datas ...any) {
			var payload AddSlidePayload
			if len(datas) > 0 && datas[0] != nil {
				if err := decodePayload(datas[0], &payload); err != nil {
					rejectEvent(socket, "addSlide", err)
					return
				}
			}
			if _, err := coord.AddSlide(context.Background(), me, payload.Content); err != nil {
				rejectEvent(socket, "addSlide", err)
			}
		})

		socket.On("editSlide", func(datas ...any) {
			var payload EditSlidePayload
			if len(datas) == 0 {
				rejectEvent(socket, "editSlide", core.ErrMalformed)
				return
			}
			if err := decodePayload(datas[0], &payload); err != nil {
				rejectEvent(socket, "editSlide", err)
				return
			}
			if _, err := coord.EditSlide(context.Background(), me, payload.SlideID, payload.Content); err != nil {
				rejectEvent(socket, "editSlide", err)
			}
		})

		socket.On("assignRole", func(datas ...any) {
			var payload AssignRolePayload
			if len(datas) == 0 {
				rejectEvent(socket, "assignRole", core.ErrMalformed)
				return
			}
			if err := decodePayload(datas[0], &payload); err != nil {
				rejectEvent(socket, "assignRole", err)
				return
			}
			if _, err := coord.AssignRole(context.Background(), me, payload.UserID, core.Role(payload.Role)); err != nil {
				rejectEvent(socket, "assignRole", err)
			}
		})

		socket.On("changeSlide", func(datas ...any) {
			var payload ChangeSlidePayload
			if len(datas) == 0 {
				rejectEvent(socket, "changeSlide", core.ErrMalformed)
				return
			}
			if err := decodePayload(datas[0], &payload); err != nil {
				rejectEvent(socket, "changeSlide", err)
				return
			}
			if _, err := coord.ChangeCurrentSlide(context.Background(), me, payload.Index); err != nil {
				rejectEvent(socket, "changeSlide", err)
			}
		})

		socket.On("disconnecting", func(datas ...any) {
			if err := coord.Leave(context.Background(), me); err != nil {
				logrus.WithError(err).WithField("conn_id", me).Error("Leave failed")
			}
		})

		socket.On("disconnect", func(datas ...any) {
			logrus.WithField("conn_id", me).Info("Client disconnected")
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv
}

// rejectEvent reports a failed event to its initiator alone. Expected
// protocol rejections log at warn; store failures log at error.
func rejectEvent(socket *socketio.Socket, event string, err error) {
	log := logrus.WithFields(logrus.Fields{"conn_id": socket.Id(), "event": event})
	switch {
	case errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrMalformed),
		errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrNotJoined):
		log.WithError(err).Warn("Event rejected")
	default:
		log.WithError(err).Error("Event failed")
	}

	if emitErr := socket.Emit("error", ErrorPayload{Event: event, Error: err.Error()}); emitErr != nil {
		log.WithError(emitErr).Warn("Error notification failed")
	}
}
