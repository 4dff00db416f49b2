package geom

// SplitTriangle clips t by the plane and returns the fragments behind and
// in front of it. Each side yields at most two triangles, fanned from the
// first clipped corner, with t's winding preserved. Fragments that are
// degenerate within eps are dropped.
//
// If the plane does not strictly separate any two corners of t, both
// results are nil: a plane that only touches a corner or an edge does
// not split the triangle.
func SplitTriangle(t Triangle, pl Plane, eps float64) (back, front []Triangle) {
	pts := t.Points()
	var dist [3]float64
	var side [3]int
	var pos, neg bool
	for i, p := range pts {
		dist[i] = pl.Distance(p)
		side[i] = sign(dist[i], eps)
		pos = pos || side[i] > 0
		neg = neg || side[i] < 0
	}
	if !pos || !neg {
		return nil, nil
	}

	var backPoly, frontPoly []Vec
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		cur := pts[i]
		if side[i] >= 0 {
			frontPoly = append(frontPoly, cur)
		}
		if side[i] <= 0 {
			backPoly = append(backPoly, cur)
		}
		if side[i]*side[j] < 0 {
			x := Lerp(cur, pts[j], dist[i]/(dist[i]-dist[j]))
			frontPoly = append(frontPoly, x)
			backPoly = append(backPoly, x)
		}
	}
	return fan(backPoly, eps), fan(frontPoly, eps)
}

// fan triangulates a convex polygon of three or four points.
func fan(poly []Vec, eps float64) []Triangle {
	var out []Triangle
	for i := 1; i+1 < len(poly); i++ {
		tri := Triangle{poly[0], poly[i], poly[i+1]}
		if !tri.Degenerate(eps) {
			out = append(out, tri)
		}
	}
	return out
}
