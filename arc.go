package gcode

import (
	"errors"
	"fmt"
	"math"
)

const (
	minimumDelta = 0.0001

	// MaxArcTurns and MaxArcPoints bound the preview of a single arc; past
	// MaxArcPoints the points are spaced further apart than the step.
	MaxArcTurns  = 100
	MaxArcPoints = 4096
)

func hypot(pos1, pos2 Position) float64 {
	return math.Hypot(pos1.X-pos2.X, pos1.Y-pos2.Y)
}

func radiusCenter(curPos, endPos Position, radius float64, clockwise bool) (Position, error) {
	if curPos.X == endPos.X && curPos.Y == endPos.Y {
		return Position{}, errors.New("expected endpoint different than current with radius")
	}

	dist := hypot(curPos, endPos)
	delta := dist - math.Abs(radius)*2
	if delta > minimumDelta {
		return Position{}, errors.New("radius too small")
	} else if delta > 0.0 {
		dist = math.Abs(radius) * 2
	}

	theta := math.Atan2(endPos.Y-curPos.Y, endPos.X-curPos.X)
	if (clockwise && radius > 0.0) || (!clockwise && radius < 0.0) {
		theta -= (math.Pi / 2.0)
	} else {
		theta += (math.Pi / 2.0)
	}

	offset := math.Abs(radius) * math.Cos(math.Asin(dist/(math.Abs(radius)*2)))
	return Position{
		X: ((curPos.X + endPos.X) / 2) + offset*math.Cos(theta),
		Y: ((curPos.Y + endPos.Y) / 2) + offset*math.Sin(theta),
	}, nil
}

// arcPoints expects the positions to be mapped to the XYZ plane, with Z being the axis of
// rotation and the arc drawn in the XY plane
func arcPoints(curPos, endPos, centerPos Position, radius float64, turns int, clockwise bool,
	step float64, linearTo func(pos Position)) error {

	if radius != 0.0 {
		var err error
		centerPos, err = radiusCenter(curPos, endPos, radius, clockwise)
		if err != nil {
			return err
		}

		radius = math.Abs(radius)
	} else if centerPos.X != curPos.X || centerPos.Y != curPos.Y {
		radius = hypot(curPos, centerPos)
		// XXX: warn if hypot(endPos, centerPos) is significantly different than radius
	} else {
		return errors.New("expected center point or radius for arc")
	}

	if turns < 1 {
		turns = 1
	} else if turns > MaxArcTurns {
		turns = MaxArcTurns
	}
	normal := endPos.Z - curPos.Z
	if math.Abs(normal) < minimumDelta {
		normal = 0.0
		if turns > 2 {
			turns = 2
		}
	}

	x := curPos.X - centerPos.X
	y := curPos.Y - centerPos.Y
	angle := math.Atan2(y, x)
	if angle < 0.0 {
		angle += math.Pi * 2
	}
	endAngle := math.Atan2(endPos.Y-centerPos.Y, endPos.X-centerPos.X)
	if endAngle < 0.0 {
		endAngle += math.Pi * 2
	}

	var angleDir float64
	if clockwise {
		angleDir = -1.0
	} else {
		angleDir = 1.0
	}

	angleTotal := float64(turns-1) * math.Pi * 2
	if math.Abs(angle-endAngle) < minimumDelta {
		angleTotal += math.Pi * 2
	} else if angle < endAngle {
		if clockwise {
			angleTotal += math.Pi*2 - (endAngle - angle)
		} else {
			angleTotal += endAngle - angle
		}
	} else {
		if clockwise {
			angleTotal += angle - endAngle
		} else {
			angleTotal += math.Pi*2 - (angle - endAngle)
		}
	}

	travelTotal := math.Hypot(angleTotal*radius, math.Abs(normal))
	numSteps := math.Floor(travelTotal / step)
	if numSteps < 1.0 {
		numSteps = 1.0
	} else if numSteps > MaxArcPoints {
		numSteps = MaxArcPoints
	}
	stepAngle := angleTotal / numSteps
	stepNormal := normal / numSteps

	for n := float64(1.0); n < numSteps; n += 1.0 {
		linearTo(
			Position{
				X: centerPos.X + radius*math.Cos(angle+n*stepAngle*angleDir),
				Y: centerPos.Y + radius*math.Sin(angle+n*stepAngle*angleDir),
				Z: curPos.Z + n*stepNormal,
			})
	}

	linearTo(endPos)
	return nil
}

func toArcPlane(plane Plane, pos Position) Position {
	switch plane {
	case XYPlane:
		return Position{X: pos.X, Y: pos.Y, Z: pos.Z}
	case ZXPlane:
		return Position{X: pos.Z, Y: pos.X, Z: pos.Y}
	case YZPlane:
		return Position{X: pos.Y, Y: pos.Z, Z: pos.X}
	default:
		panic(fmt.Sprintf("unexpected arcPlane: %d", plane))
	}
}

func fromArcPlane(plane Plane, pos Position) Position {
	switch plane {
	case XYPlane:
		return pos
	case ZXPlane:
		return Position{X: pos.Y, Y: pos.Z, Z: pos.X}
	case YZPlane:
		return Position{X: pos.Z, Y: pos.X, Z: pos.Y}
	default:
		panic(fmt.Sprintf("unexpected arcPlane: %d", plane))
	}
}

// ArcPoints resolves an arc command into points spaced about step apart,
// ending at cmd.End; at most MaxArcPoints points are returned. The program
// model keeps arcs as straight start to end commands; this is only for
// previewing them.
func ArcPoints(cmd MotionCommand, step float64) ([]Position, error) {
	if !cmd.Kind.IsArc() || cmd.Arc == nil {
		return []Position{cmd.End}, nil
	}
	if step <= 0.0 {
		return nil, fmt.Errorf("expected a positive step: %v", step)
	}

	arc := cmd.Arc
	var radius float64
	centerPos := cmd.Start
	if arc.HasRadius {
		if arc.HasCenter {
			return nil, errors.New("both center point and radius specified for arc")
		}
		radius = arc.R
		if radius == 0.0 {
			return nil, errors.New("expected a non-zero radius")
		}
	} else if arc.HasCenter {
		if arc.AbsoluteCenter {
			centerPos = Position{X: arc.I, Y: arc.J, Z: arc.K}
		} else {
			centerPos = Position{X: cmd.Start.X + arc.I, Y: cmd.Start.Y + arc.J,
				Z: cmd.Start.Z + arc.K}
		}
	} else {
		return nil, errors.New("expected center point or radius for arc")
	}

	var pts []Position
	err := arcPoints(toArcPlane(arc.Plane, cmd.Start), toArcPlane(arc.Plane, cmd.End),
		toArcPlane(arc.Plane, centerPos), radius, arc.Turns, cmd.Kind == ClockwiseArcMove, step,
		func(pos Position) {
			pts = append(pts, fromArcPlane(arc.Plane, pos))
		})
	if err != nil {
		return nil, err
	}

	// Rotary axes are not interpolated.
	for idx := range pts {
		pts[idx].A, pts[idx].B, pts[idx].C = cmd.End.A, cmd.End.B, cmd.End.C
	}
	pts[len(pts)-1] = cmd.End
	return pts, nil
}

// Tessellate is ArcPoints, falling back to the straight segment when the
// arc words do not describe an arc.
func Tessellate(cmd MotionCommand, step float64) []Position {
	pts, err := ArcPoints(cmd, step)
	if err != nil {
		return []Position{cmd.End}
	}
	return pts
}
