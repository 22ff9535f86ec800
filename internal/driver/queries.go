package driver

// Node identity: Users and Activities are keyed by `id`, States by `name`.
const (
	SnapshotEdgesQuery = `
		MATCH (n)-[r]->(m)
		RETURN n.id AS source_id, n.name AS source_name, labels(n) AS source_labels,
			m.id AS target_id, m.name AS target_name, labels(m) AS target_labels,
			type(r) AS type
	`

	ActivitiesForUserQuery = `
		MATCH (u:User {id: $uid})-[:EXPERIENCES]->(s:State)<-[:TREATS]-(a:Activity)
		RETURN a.id AS id, a.name AS title, a.type AS type, s.name AS reason_category, 'Activity' AS category
		LIMIT $limit
	`

	ActivitiesForStatesQuery = `
		MATCH (s:State)<-[:TREATS]-(a:Activity)
		WHERE s.name IN $states
		RETURN a.id AS id, a.name AS title, a.type AS type, s.name AS reason_category, 'Activity' AS category
		LIMIT $limit
	`

	ActivityByIDQuery = `
		MATCH (a:Activity {id: $aid})
		RETURN a.id AS id, a.name AS title, a.type AS type, 'Activity' AS category
	`

	ConnectingStatesQuery = `
		MATCH (u:User {id: $uid})-[:EXPERIENCES]->(s:State)<-[:TREATS]-(a:Activity {id: $aid})
		RETURN s.name AS state
	`

	GraphStatsQuery = `
		CALL { MATCH (u:User) RETURN count(u) AS users }
		CALL { MATCH (s:State) RETURN count(s) AS states }
		CALL { MATCH (a:Activity) RETURN count(a) AS activities }
		CALL { MATCH ()-[t:TREATS]->() RETURN count(t) AS treats }
		CALL { MATCH ()-[e:EXPERIENCES]->() RETURN count(e) AS experiences }
		RETURN users, states, activities, treats, experiences
	`
)

var ConstraintQueries = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (s:State) REQUIRE s.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (a:Activity) REQUIRE a.id IS UNIQUE",
}
