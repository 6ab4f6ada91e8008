package services

import (
	"context"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/platform/eventloop"
	"epsg-map-service/internal/ports"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// TransformGateway performs single coordinate transforms against the remote
// service. Positions in the base system are returned as-is without a call.
type TransformGateway struct {
	provider ports.TransformProvider
	limiter  *rate.Limiter
	group    singleflight.Group

	loop  eventloop.Poster
	spawn eventloop.Spawner
}

// NewTransformGateway builds a gateway whose async completions are posted to
// loop. A nil limiter disables client-side rate limiting.
func NewTransformGateway(
	provider ports.TransformProvider,
	limiter *rate.Limiter,
	loop eventloop.Poster,
	spawn eventloop.Spawner,
) *TransformGateway {
	if spawn == nil {
		spawn = eventloop.Go
	}
	return &TransformGateway{provider: provider, limiter: limiter, loop: loop, spawn: spawn}
}

// Forward projects a geographic position into srs.
func (g *TransformGateway) Forward(ctx context.Context, pos domain.Coordinates, srs string) (east, north float64, err error) {
	if domain.IsIdentity(srs) {
		return pos.Lon, pos.Lat, nil
	}
	if !pos.IsFinite() {
		return 0, 0, fmt.Errorf("transform gateway: forward: non-finite position %v", pos)
	}

	res, err := g.transform(ctx, ports.TransformRequest{
		Direction: domain.Forward,
		SRS:       srs,
		X:         pos.Lon,
		Y:         pos.Lat,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("transform gateway: forward to %s: %w", srs, err)
	}
	return res.X, res.Y, nil
}

// Inverse converts an easting/northing in srs back to a geographic position.
func (g *TransformGateway) Inverse(ctx context.Context, east, north float64, srs string) (domain.Coordinates, error) {
	if domain.IsIdentity(srs) {
		return domain.Coordinates{Lon: east, Lat: north}, nil
	}

	res, err := g.transform(ctx, ports.TransformRequest{
		Direction: domain.Inverse,
		SRS:       srs,
		X:         east,
		Y:         north,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("transform gateway: inverse from %s: %w", srs, err)
	}
	return domain.Coordinates{Lon: res.X, Lat: res.Y}, nil
}

// RequestForward runs Forward off the loop and delivers the result on it.
// Identity transforms complete before RequestForward returns.
func (g *TransformGateway) RequestForward(
	ctx context.Context,
	pos domain.Coordinates,
	srs string,
	done func(east, north float64, err error),
) {
	if domain.IsIdentity(srs) {
		done(pos.Lon, pos.Lat, nil)
		return
	}
	g.spawn(func() {
		east, north, err := g.Forward(ctx, pos, srs)
		g.loop.Post(func() { done(east, north, err) })
	})
}

// RequestInverse runs Inverse off the loop and delivers the result on it.
func (g *TransformGateway) RequestInverse(
	ctx context.Context,
	east, north float64,
	srs string,
	done func(pos domain.Coordinates, err error),
) {
	if domain.IsIdentity(srs) {
		done(domain.Coordinates{Lon: east, Lat: north}, nil)
		return
	}
	g.spawn(func() {
		pos, err := g.Inverse(ctx, east, north, srs)
		g.loop.Post(func() { done(pos, err) })
	})
}

// transform collapses identical in-flight requests into one provider call.
func (g *TransformGateway) transform(ctx context.Context, req ports.TransformRequest) (ports.TransformResult, error) {
	key := string(req.Direction) + "|" + req.SRS + "|" +
		strconv.FormatFloat(req.X, 'g', -1, 64) + "|" +
		strconv.FormatFloat(req.Y, 'g', -1, 64)

	v, err, _ := g.group.Do(key, func() (any, error) {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}
		return g.provider.Transform(ctx, req)
	})
	if err != nil {
		return ports.TransformResult{}, err
	}
	return v.(ports.TransformResult), nil
}
